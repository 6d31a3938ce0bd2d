package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/middlewares"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

type DiscountController struct {
	Discounts *services.DiscountService
	Registry  *session.Registry
}

func NewDiscountController(discounts *services.DiscountService, registry *session.Registry) *DiscountController {
	return &DiscountController{Discounts: discounts, Registry: registry}
}

type activeRequest struct {
	Activo *bool `json:"activo" binding:"required"`
}

func (dc *DiscountController) List(c *gin.Context) {
	items, err := dc.Discounts.List(c.Request.Context(), middlewares.Credentials(c))
	if err != nil {
		respondFailure(c, dc.Registry, err, "Error al cargar los descuentos")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Descuentos", items)
}

func (dc *DiscountController) SetActive(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorData(c, http.StatusBadRequest, "El campo activo es requerido", nil)
		return
	}

	d, notice, err := dc.Discounts.SetActive(c.Request.Context(), middlewares.Credentials(c), id, *req.Activo)
	if err != nil {
		respondFailure(c, dc.Registry, err, notice.Message)
		return
	}
	utils.RespondNotice(c, http.StatusOK, notice, d)
}

func (dc *DiscountController) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorData(c, http.StatusBadRequest, "Movimiento inválido", nil)
		return
	}

	notice, items, err := dc.Discounts.Reorder(c.Request.Context(), middlewares.Credentials(c), req.ActiveID, req.OverID)
	respondReorder(c, dc.Registry, notice, items, err, "Error al cargar los descuentos")
}
