package controllers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/corte"
	"github.com/yeremiapane/restaurant-backoffice/history"
	"github.com/yeremiapane/restaurant-backoffice/kds"
	"github.com/yeremiapane/restaurant-backoffice/liveboard"
	"github.com/yeremiapane/restaurant-backoffice/middlewares"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

const msgDetailFailed = "No se pudo cargar el detalle completo de la orden"

type OrderController struct {
	Backend  corte.HistoryBackend
	Board    *liveboard.Board
	Hub      *kds.Hub
	Audit    *services.AuditService
	Registry *session.Registry

	mu       sync.Mutex
	browsers map[*session.Gate]*history.Browser
}

func NewOrderController(backend corte.HistoryBackend, board *liveboard.Board, hub *kds.Hub, audit *services.AuditService, registry *session.Registry) *OrderController {
	return &OrderController{
		Backend:  backend,
		Board:    board,
		Hub:      hub,
		Audit:    audit,
		Registry: registry,
		browsers: make(map[*session.Gate]*history.Browser),
	}
}

// History serves one page of the order history. Backend failures come back as
// a banner over an empty page rather than an error status.
func (oc *OrderController) History(c *gin.Context) {
	var q history.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		respondFailure(c, oc.Registry, history.ErrInvalidQuery, "Parámetros de búsqueda inválidos")
		return
	}
	q = q.WithDefaults()
	if err := q.Validate(); err != nil {
		respondFailure(c, oc.Registry, err, "Parámetros de búsqueda inválidos")
		return
	}

	creds := middlewares.Credentials(c)
	fetch := func(ctx context.Context, q history.Query) (models.HistoryPage, error) {
		return oc.Backend.OrderHistory(ctx, creds, q.Values())
	}
	result, err := history.Fetch(c.Request.Context(), fetch, q)
	if client.IsUnauthorized(err) {
		middlewares.SessionExpired(c, oc.Registry)
		return
	}
	if result.Banner != nil {
		utils.RespondNotice(c, http.StatusOK, models.ErrorNotice(result.Banner.Message), gin.H{"query": q, "result": result})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Historial de órdenes", gin.H{"query": q, "result": result})
}

// Detail merges the backend detail into the cached board row. A failed detail
// call still answers with what is known, flagged as partial.
func (oc *OrderController) Detail(c *gin.Context) {
	id := models.ID(c.Param("id"))
	order, err := oc.Board.Detail(c.Request.Context(), middlewares.Credentials(c), id)
	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Detalle de la orden", gin.H{"orden": order, "partial": false})
	case client.IsUnauthorized(err):
		middlewares.SessionExpired(c, oc.Registry)
	case errors.Is(err, client.ErrNotFound) && isBlank(order):
		respondFailure(c, oc.Registry, err, "Orden no encontrada")
	default:
		utils.Error().WithError(err).WithField("order_id", id).Error("order detail failed")
		utils.RespondNotice(c, http.StatusOK, models.ErrorNotice(msgDetailFailed), gin.H{"orden": order, "partial": true})
	}
}

func isBlank(o models.Order) bool {
	return o.Estado == "" && o.FechaCreacion == ""
}

// Action runs aceptar, rechazar, completar or cancelar on one order.
func (oc *OrderController) Action(c *gin.Context) {
	action, ok := liveboard.ParseAction(c.Param("action"))
	if !ok {
		utils.RespondErrorData(c, http.StatusNotFound, "Acción desconocida", nil)
		return
	}
	id := models.ID(c.Param("id"))

	order, err := oc.Board.Transition(c.Request.Context(), middlewares.Credentials(c), id, action)
	oc.Audit.Record(c.Request.Context(), services.AuditTransition, "ordenes", id.String(), string(action), err == nil)
	if err != nil {
		respondFailure(c, oc.Registry, err, "Error al actualizar el estado de la orden")
		return
	}
	notice := models.SuccessNotice("Orden #" + id.String() + " actualizada a " + string(order.Estado))
	oc.Hub.BroadcastStaffNotification(notice.Message)
	utils.RespondNotice(c, http.StatusOK, notice, order)
}

// browser returns the history list of the current session, loading its first
// page when the session has none yet.
func (oc *OrderController) browser(c *gin.Context) (*history.Browser, *session.Gate) {
	gate := middlewares.Session(c)
	if gate == nil {
		return nil, nil
	}

	oc.mu.Lock()
	b, ok := oc.browsers[gate]
	oc.mu.Unlock()
	if ok {
		return b, gate
	}

	creds := gate.Credentials()
	b = history.NewBrowser(func(ctx context.Context, q history.Query) (models.HistoryPage, error) {
		page, err := oc.Backend.OrderHistory(ctx, creds, q.Values())
		return page, gate.Observe(err)
	})
	b.Reload(c.Request.Context())

	oc.mu.Lock()
	defer oc.mu.Unlock()
	if existing, ok := oc.browsers[gate]; ok {
		return existing, gate
	}
	for g := range oc.browsers {
		if g.State() != session.Authenticated {
			delete(oc.browsers, g)
		}
	}
	oc.browsers[gate] = b
	return b, gate
}

func (oc *OrderController) respondBrowser(c *gin.Context, b *history.Browser, gate *session.Gate) {
	if gate.State() != session.Authenticated {
		oc.mu.Lock()
		delete(oc.browsers, gate)
		oc.mu.Unlock()
		middlewares.SessionExpired(c, oc.Registry)
		return
	}
	view := b.View()
	if view.Banner != nil {
		utils.RespondNotice(c, http.StatusOK, models.ErrorNotice(view.Banner.Message), view)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Historial de órdenes", view)
}

// Browse returns the orders loaded so far in the session's history list.
func (oc *OrderController) Browse(c *gin.Context) {
	b, gate := oc.browser(c)
	if b == nil {
		middlewares.SessionExpired(c, oc.Registry)
		return
	}
	oc.respondBrowser(c, b, gate)
}

// BrowseNext appends the next page to the session's history list.
func (oc *OrderController) BrowseNext(c *gin.Context) {
	b, gate := oc.browser(c)
	if b == nil {
		middlewares.SessionExpired(c, oc.Registry)
		return
	}
	b.Next(c.Request.Context())
	oc.respondBrowser(c, b, gate)
}

// BrowseFilter replaces the filters and starts the list over.
func (oc *OrderController) BrowseFilter(c *gin.Context) {
	var f history.Filters
	if err := c.ShouldBindJSON(&f); err != nil {
		utils.RespondErrorData(c, http.StatusBadRequest, "Filtros inválidos", nil)
		return
	}
	q := history.Query{Filters: f}.WithDefaults()
	if err := q.Validate(); err != nil {
		respondFailure(c, oc.Registry, err, "Parámetros de búsqueda inválidos")
		return
	}
	b, gate := oc.browser(c)
	if b == nil {
		middlewares.SessionExpired(c, oc.Registry)
		return
	}
	b.ApplyFilters(c.Request.Context(), q.Filters)
	oc.respondBrowser(c, b, gate)
}

func (oc *OrderController) BrowseClear(c *gin.Context) {
	b, gate := oc.browser(c)
	if b == nil {
		middlewares.SessionExpired(c, oc.Registry)
		return
	}
	b.ClearFilters(c.Request.Context())
	oc.respondBrowser(c, b, gate)
}

// BrowseSort sorts by :campo, flipping the direction when it is already the
// sort field.
func (oc *OrderController) BrowseSort(c *gin.Context) {
	b, gate := oc.browser(c)
	if b == nil {
		middlewares.SessionExpired(c, oc.Registry)
		return
	}
	b.ToggleSort(c.Request.Context(), c.Param("campo"))
	oc.respondBrowser(c, b, gate)
}
