package kds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/liveboard"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

func init() {
	utils.SilenceLogger()
}

type snapshotBackend struct {
	orders []models.Order
}

func (s snapshotBackend) LiveSnapshot(ctx context.Context, creds client.Credentials, sucursalID int64) ([]models.Order, error) {
	return s.orders, nil
}

func (s snapshotBackend) OrderDetail(ctx context.Context, creds client.Credentials, id models.ID) (models.Order, error) {
	return models.Order{}, client.ErrNotFound
}

func (s snapshotBackend) UpdateOrderStatus(ctx context.Context, creds client.Credentials, id models.ID, status models.OrderStatus) error {
	return nil
}

// startHub serves the hub over a test server and dials one screen.
func startHub(t *testing.T, hub *Hub, board *liveboard.Board) *websocket.Conn {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.RegisterClient(conn, "cocina", board.Lanes())
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.UnregisterClient(conn)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg.Event, msg.Data
}

func TestHubSendsSnapshotThenChanges(t *testing.T) {
	board := liveboard.NewBoard(snapshotBackend{orders: []models.Order{
		{ID: "1", Estado: models.StatusPendiente},
		{ID: "2", Estado: models.StatusPreparando},
	}}, 1)
	require.NoError(t, board.Load(context.Background(), client.Credentials{}))

	hub := NewHub()
	stop := make(chan struct{})
	go hub.Run(board, stop)
	defer close(stop)

	conn := startHub(t, hub, board)

	event, data := readMessage(t, conn)
	assert.Equal(t, EventBoardSnapshot, event)
	var lanes liveboard.Lanes
	require.NoError(t, json.Unmarshal(data, &lanes))
	assert.Len(t, lanes.Pendientes, 1)
	assert.Len(t, lanes.Preparando, 1)
	assert.Equal(t, 1, hub.Clients())

	board.Apply(models.LiveEvent{Tipo: models.EventOrdenNueva, Orden: json.RawMessage(`{"id":3,"estado":"PENDIENTE"}`)})
	event, data = readMessage(t, conn)
	assert.Equal(t, EventOrderNew, event)
	assert.Contains(t, string(data), `"id":3`)

	board.Apply(models.LiveEvent{Tipo: models.EventOrdenActualizada, Orden: json.RawMessage(`{"id":1,"estado":"PREPARANDO"}`)})
	event, data = readMessage(t, conn)
	assert.Equal(t, EventOrderUpdate, event)
	assert.Contains(t, string(data), `"estado":"PREPARANDO"`)

	hub.BroadcastStaffNotification("Mesa 4 pide la cuenta")
	event, data = readMessage(t, conn)
	assert.Equal(t, EventStaffNotif, event)
	assert.Equal(t, `"Mesa 4 pide la cuenta"`, string(data))
}

func TestHubDropsClosedScreens(t *testing.T) {
	board := liveboard.NewBoard(snapshotBackend{}, 1)
	hub := NewHub()
	conn := startHub(t, hub, board)

	event, _ := readMessage(t, conn)
	assert.Equal(t, EventBoardSnapshot, event)
	require.Equal(t, 1, hub.Clients())

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
