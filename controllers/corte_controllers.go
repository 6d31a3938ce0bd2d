package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/corte"
	"github.com/yeremiapane/restaurant-backoffice/middlewares"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

type CorteController struct {
	Corte    *corte.Service
	Audit    *services.AuditService
	Registry *session.Registry
}

func NewCorteController(svc *corte.Service, audit *services.AuditService, registry *session.Registry) *CorteController {
	return &CorteController{Corte: svc, Audit: audit, Registry: registry}
}

type cashCountRequest struct {
	Fecha    string        `json:"fecha"`
	Efectivo *models.Money `json:"efectivo" binding:"required"`
}

// Report answers the corte of ?fecha=, today by default. A failed load keeps
// the KPIs at zero and carries the error text.
func (cc *CorteController) Report(c *gin.Context) {
	report := cc.Corte.Report(c.Request.Context(), middlewares.Credentials(c), c.Query("fecha"))
	switch {
	case report.Err == nil:
		utils.RespondJSON(c, http.StatusOK, "Corte del día", report)
	case client.IsUnauthorized(report.Err):
		middlewares.SessionExpired(c, cc.Registry)
	case errors.Is(report.Err, corte.ErrInvalidDate):
		utils.RespondErrorData(c, http.StatusBadRequest, report.Error, report)
	default:
		utils.RespondNotice(c, http.StatusOK, models.ErrorNotice(report.Error), report)
	}
}

// RecordCount stores a cash drawer count for the day and returns the
// difference against gross sales.
func (cc *CorteController) RecordCount(c *gin.Context) {
	var req cashCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorData(c, http.StatusBadRequest, "El efectivo contado es requerido", nil)
		return
	}
	if req.Efectivo.IsNegative() {
		utils.RespondErrorData(c, http.StatusUnprocessableEntity, "El efectivo no puede ser negativo", nil)
		return
	}

	usuario := ""
	if g := middlewares.Session(c); g != nil && g.User() != nil {
		usuario = g.User().Email
	}

	count, rec, err := cc.Corte.RecordCount(c.Request.Context(), middlewares.Credentials(c), req.Fecha, *req.Efectivo, usuario)
	cc.Audit.Record(c.Request.Context(), services.AuditCashCount, "cortes", count.ID, req.Efectivo.StringFixed(2), err == nil)
	switch {
	case err == nil:
	case client.IsUnauthorized(err):
		middlewares.SessionExpired(c, cc.Registry)
		return
	case errors.Is(err, corte.ErrInvalidDate):
		utils.RespondErrorData(c, http.StatusBadRequest, err.Error(), nil)
		return
	default:
		respondFailure(c, cc.Registry, err, "Error al guardar el arqueo")
		return
	}

	var msg string
	switch {
	case rec.Diferencia.IsZero():
		msg = "Arqueo registrado, caja cuadrada"
	case rec.Sobrante:
		msg = "Arqueo registrado con sobrante de " + utils.FormatCurrency(rec.Diferencia)
	default:
		msg = "Arqueo registrado con faltante de " + utils.FormatCurrency(rec.Diferencia.Abs())
	}
	utils.RespondNotice(c, http.StatusCreated, models.SuccessNotice(msg), gin.H{"arqueo": count, "conciliacion": rec})
}

func (cc *CorteController) Counts(c *gin.Context) {
	counts, err := cc.Corte.Counts(c.Request.Context(), c.Query("fecha"))
	if errors.Is(err, corte.ErrInvalidDate) {
		utils.RespondErrorData(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err != nil {
		respondFailure(c, cc.Registry, err, "Error al cargar los arqueos")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Arqueos", counts)
}
