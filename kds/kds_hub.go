// Package kds pushes the live board to kitchen display screens over websockets.
package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-backoffice/liveboard"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

// Event types
const (
	EventBoardSnapshot = "board_snapshot"
	EventOrderNew      = "order_new"
	EventOrderUpdate   = "order_update"
	EventOrderResync   = "order_resync"
	EventStaffNotif    = "staff_notification"
)

const writeWait = 10 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds the connected screens, keyed by connection, with the staff name
// that opened each one.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

// RegisterClient adds conn and sends it the current lanes.
func (h *Hub) RegisterClient(conn *websocket.Conn, who string, lanes liveboard.Lanes) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = who
	if err := h.write(conn, Message{Event: EventBoardSnapshot, Data: lanes}); err != nil {
		utils.Error().WithError(err).WithField("client", who).Error("sending board snapshot")
	}
}

func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// BroadcastChange relays one applied board change.
func (h *Hub) BroadcastChange(c liveboard.Change) {
	event := EventOrderUpdate
	switch c.Tipo {
	case models.EventOrdenNueva:
		event = EventOrderNew
	case models.EventOrdenExistente:
		event = EventOrderResync
	}
	h.broadcast(Message{Event: event, Data: c.Orden})
}

func (h *Hub) BroadcastStaffNotification(message string) {
	h.broadcast(Message{Event: EventStaffNotif, Data: message})
}

// Run relays board changes until the board closes the subscription or stop
// is closed.
func (h *Hub) Run(board *liveboard.Board, stop <-chan struct{}) {
	id, changes := board.Subscribe()
	defer board.Unsubscribe(id)

	for {
		select {
		case c, ok := <-changes:
			if !ok {
				return
			}
			h.BroadcastChange(c)
		case <-stop:
			return
		}
	}
}

func (h *Hub) broadcast(msg Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, who := range h.clients {
		if err := h.write(conn, msg); err != nil {
			utils.Error().WithError(err).WithField("client", who).Error("sending to kitchen screen")
			delete(h.clients, conn)
			conn.Close()
		}
	}
	utils.Info().WithField("event", msg.Event).WithField("clients", len(h.clients)).Debug("board message broadcast")
}

func (h *Hub) write(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
