package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/middlewares"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/reorder"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

// ReorderRequest is a drop of activeId onto overId.
type ReorderRequest struct {
	ActiveID int64 `json:"activeId" binding:"required"`
	OverID   int64 `json:"overId" binding:"required"`
}

type CatalogController struct {
	Catalog  *services.CatalogService
	Registry *session.Registry
}

func NewCatalogController(catalog *services.CatalogService, registry *session.Registry) *CatalogController {
	return &CatalogController{Catalog: catalog, Registry: registry}
}

const resourceKey = "catalogResource"

// Bind tags the routes of one catalog resource with its name.
func (cc *CatalogController) Bind(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(resourceKey, name)
		c.Next()
	}
}

func (cc *CatalogController) resource(c *gin.Context) (services.CatalogResource, bool) {
	r, ok := cc.Catalog.Resource(c.GetString(resourceKey))
	if !ok {
		utils.RespondErrorData(c, http.StatusNotFound, "Recurso desconocido", nil)
	}
	return r, ok
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondErrorData(c, http.StatusBadRequest, "Identificador inválido", nil)
		return 0, false
	}
	return id, true
}

func (cc *CatalogController) List(c *gin.Context) {
	r, ok := cc.resource(c)
	if !ok {
		return
	}
	items, err := r.List(c.Request.Context(), middlewares.Credentials(c))
	if err != nil {
		respondFailure(c, cc.Registry, err, r.Labels().LoadFailed())
		return
	}
	utils.RespondJSON(c, http.StatusOK, r.Labels().Plural, items)
}

func (cc *CatalogController) Get(c *gin.Context) {
	r, ok := cc.resource(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := r.Get(c.Request.Context(), middlewares.Credentials(c), id)
	if err != nil {
		respondFailure(c, cc.Registry, err, r.Labels().Singular+" no encontrado")
		return
	}
	utils.RespondJSON(c, http.StatusOK, r.Labels().Singular, item)
}

func (cc *CatalogController) Create(c *gin.Context) {
	r, ok := cc.resource(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := r.Create(c.Request.Context(), middlewares.Credentials(c), body)
	if err != nil {
		respondFailure(c, cc.Registry, err, r.Labels().SaveFailed())
		return
	}
	utils.RespondNotice(c, http.StatusCreated, models.SuccessNotice(r.Labels().Created()), item)
}

func (cc *CatalogController) Update(c *gin.Context) {
	r, ok := cc.resource(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	item, err := r.Update(c.Request.Context(), middlewares.Credentials(c), id, body)
	if err != nil {
		respondFailure(c, cc.Registry, err, r.Labels().SaveFailed())
		return
	}
	utils.RespondNotice(c, http.StatusOK, models.SuccessNotice(r.Labels().Updated()), item)
}

// Delete needs ?confirm=true; without it nothing is sent to the backend and
// the answer asks for confirmation.
func (cc *CatalogController) Delete(c *gin.Context) {
	r, ok := cc.resource(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if c.Query("confirm") != "true" {
		notice := models.NewNotice(models.NoticeInfo, "¿Seguro que deseas eliminar "+r.Labels().Singular+"? Esta acción no se puede deshacer")
		utils.RespondNotice(c, http.StatusConflict, notice, gin.H{"confirm": true, "id": id})
		return
	}
	if err := r.Delete(c.Request.Context(), middlewares.Credentials(c), id); err != nil {
		respondFailure(c, cc.Registry, err, r.Labels().DeleteFailed())
		return
	}
	utils.RespondNotice(c, http.StatusOK, models.SuccessNotice(r.Labels().Deleted()), gin.H{"id": id})
}

func (cc *CatalogController) Reorder(c *gin.Context) {
	r, ok := cc.resource(c)
	if !ok {
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorData(c, http.StatusBadRequest, "Movimiento inválido", nil)
		return
	}

	notice, items, err := r.Reorder(c.Request.Context(), middlewares.Credentials(c), req.ActiveID, req.OverID)
	respondReorder(c, cc.Registry, notice, items, err, r.Labels().LoadFailed())
}

func respondReorder(c *gin.Context, registry *session.Registry, notice *models.Notice, items any, err error, loadFailed string) {
	switch {
	case err == nil && notice == nil:
		utils.RespondJSON(c, http.StatusOK, "Sin cambios", items)
	case err == nil:
		utils.RespondNotice(c, http.StatusOK, *notice, items)
	case errors.Is(err, reorder.ErrCrossGroup):
		utils.RespondNotice(c, http.StatusUnprocessableEntity, *notice, items)
	case notice != nil && !client.IsUnauthorized(err):
		utils.RespondNotice(c, http.StatusBadGateway, *notice, items)
	default:
		respondFailure(c, registry, err, loadFailed)
	}
}

func (cc *CatalogController) ProductsBySubcategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := cc.Catalog.ProductsBySubcategory(c.Request.Context(), middlewares.Credentials(c), id)
	if err != nil {
		respondFailure(c, cc.Registry, err, "Error al cargar los productos")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Productos", items)
}
