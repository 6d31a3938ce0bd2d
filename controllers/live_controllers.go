package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/middlewares"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

const (
	streamRetry       = 3000
	keepaliveInterval = 15 * time.Second

	msgBoardFailed = "Error al cargar las órdenes en vivo"
)

type LiveController struct {
	Monitor  *services.BoardMonitor
	Registry *session.Registry
	// KeepAlive is the interval of the comment lines that hold the stream open.
	KeepAlive time.Duration
}

func NewLiveController(monitor *services.BoardMonitor, registry *session.Registry) *LiveController {
	return &LiveController{Monitor: monitor, Registry: registry, KeepAlive: keepaliveInterval}
}

// ensure loads the board on first use with the caller's session.
func (lc *LiveController) ensure(c *gin.Context) bool {
	gate := middlewares.Session(c)
	if gate == nil {
		middlewares.SessionExpired(c, lc.Registry)
		return false
	}
	if err := lc.Monitor.Ensure(c.Request.Context(), gate); err != nil {
		respondFailure(c, lc.Registry, err, msgBoardFailed)
		return false
	}
	return true
}

// Board returns the live orders split into lanes.
func (lc *LiveController) Board(c *gin.Context) {
	if !lc.ensure(c) {
		return
	}
	lanes := lc.Monitor.Board.Lanes()
	utils.RespondJSON(c, http.StatusOK, "Órdenes en vivo", gin.H{
		"lanes":     lanes,
		"total":     lanes.Total(),
		"streaming": lc.Monitor.Streaming(),
	})
}

// Stream relays board changes to the browser as server-sent events. It starts
// with one ORDEN_EXISTENTE event per order so a reconnecting page can rebuild
// its board.
func (lc *LiveController) Stream(c *gin.Context) {
	if !lc.ensure(c) {
		return
	}
	board := lc.Monitor.Board

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	id, changes := board.Subscribe()
	defer board.Unsubscribe(id)

	send := func(tipo models.LiveEventType, order models.Order) error {
		raw, err := json.Marshal(order)
		if err != nil {
			return err
		}
		if err := sse.Encode(c.Writer, sse.Event{Data: models.LiveEvent{Tipo: tipo, Orden: raw}}); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	if _, err := fmt.Fprintf(c.Writer, "retry: %d\n\n", streamRetry); err != nil {
		return
	}
	for _, o := range board.Orders() {
		if err := send(models.EventOrdenExistente, o); err != nil {
			return
		}
	}
	c.Writer.Flush()

	ticker := time.NewTicker(lc.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				return
			}
			if err := send(change.Tipo, change.Orden); err != nil {
				utils.Error().WithError(err).WithField("subscriber_id", id).Error("writing board event")
				return
			}
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			utils.Info().WithField("subscriber_id", id).Info("board stream closed by client")
			return
		}
	}
}
