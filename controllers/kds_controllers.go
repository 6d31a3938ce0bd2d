package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-backoffice/kds"
	"github.com/yeremiapane/restaurant-backoffice/middlewares"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

type KDSController struct {
	Live     *LiveController
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts websocket upgrades from origin only. Requests
// without an Origin header, like native screens, are let through.
func NewKDSController(live *LiveController, hub *kds.Hub, origin string) *KDSController {
	return &KDSController{
		Live: live,
		Hub:  hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return o == "" || origin == "*" || o == origin
			},
		},
	}
}

// KDSHandler -> endpoint WebSocket
func (kc *KDSController) KDSHandler(c *gin.Context) {
	if !kc.Live.ensure(c) {
		return
	}

	who := "staff"
	if g := middlewares.Session(c); g != nil && g.User() != nil && g.User().Nombre != "" {
		who = g.User().Nombre
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Error().WithError(err).Error("websocket upgrade failed")
		return
	}

	kc.Hub.RegisterClient(ws, who, kc.Live.Monitor.Board.Lanes())

	// Screens only listen; reading detects the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.Hub.UnregisterClient(ws)
}
