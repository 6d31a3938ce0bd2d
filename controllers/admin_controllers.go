package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/kds"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

type AdminController struct {
	Audit    *services.AuditService
	Hub      *kds.Hub
	Registry *session.Registry
}

func NewAdminController(audit *services.AuditService, hub *kds.Hub, registry *session.Registry) *AdminController {
	return &AdminController{Audit: audit, Hub: hub, Registry: registry}
}

// AuditLog lists the latest admin actions, ?resource= narrows it to one screen.
func (ac *AdminController) AuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := ac.Audit.Recent(c.Request.Context(), c.Query("resource"), limit)
	if err != nil {
		respondFailure(c, ac.Registry, err, "Error al cargar la auditoría")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Auditoría", entries)
}

// Sessions reports how many browser sessions and kitchen screens the gateway
// is serving.
func (ac *AdminController) Sessions(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Sesiones", gin.H{
		"activas":   ac.Registry.Len(),
		"pantallas": ac.Hub.Clients(),
	})
}
