package liveboard

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

// Backend is what the board needs from the REST client.
type Backend interface {
	LiveSnapshot(ctx context.Context, creds client.Credentials, sucursalID int64) ([]models.Order, error)
	OrderDetail(ctx context.Context, creds client.Credentials, id models.ID) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, creds client.Credentials, id models.ID, status models.OrderStatus) error
}

// Change is an applied event together with the resulting order.
type Change struct {
	Tipo  models.LiveEventType `json:"tipo"`
	Orden models.Order         `json:"orden"`
}

const subscriberBuffer = 100

type Board struct {
	backend    Backend
	sucursalID int64

	mu     sync.RWMutex
	orders []models.Order
	loaded bool

	subMu       sync.RWMutex
	subscribers map[string]chan Change
}

func NewBoard(backend Backend, sucursalID int64) *Board {
	return &Board{
		backend:     backend,
		sucursalID:  sucursalID,
		orders:      []models.Order{},
		subscribers: make(map[string]chan Change),
	}
}

func (b *Board) SucursalID() int64 { return b.sucursalID }

// Load replaces the board with the backend snapshot.
func (b *Board) Load(ctx context.Context, creds client.Credentials) error {
	orders, err := b.backend.LiveSnapshot(ctx, creds, b.sucursalID)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}
	b.mu.Lock()
	b.orders = orders
	b.loaded = true
	b.mu.Unlock()

	utils.Info().WithField("sucursal", b.sucursalID).WithField("orders", len(orders)).Info("board snapshot loaded")
	return nil
}

// Apply merges one stream event and notifies subscribers. It reports false
// when the event carried no usable order. Changes reach subscribers in the
// order they were applied.
func (b *Board) Apply(evt models.LiveEvent) (models.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	next, order, ok := reduce(b.orders, evt)
	b.orders = next
	if !ok {
		return models.Order{}, false
	}
	b.broadcast(Change{Tipo: evt.Tipo, Orden: order})
	return order, true
}

// Loaded reports whether a snapshot has been taken.
func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

func (b *Board) Orders() []models.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.orders)
}

func (b *Board) Lanes() Lanes {
	return SplitLanes(b.Orders())
}

// Order returns the cached order with id.
func (b *Board) Order(id models.ID) (models.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := indexOf(b.orders, id); i >= 0 {
		return b.orders[i], true
	}
	return models.Order{}, false
}

// Detail returns the cached order merged with the backend detail. When the
// detail cannot be fetched the cached order is returned along with the error.
func (b *Board) Detail(ctx context.Context, creds client.Credentials, id models.ID) (models.Order, error) {
	cached, _ := b.Order(id)
	if cached.ID == "" {
		cached.ID = id
	}
	detail, err := b.backend.OrderDetail(ctx, creds, id)
	if err != nil {
		return cached, fmt.Errorf("order %s detail: %w", id, err)
	}
	return models.MergeDetail(cached, detail), nil
}

// Transition runs a row action. The status change is checked locally before
// the backend is asked. Orders on the board get the new status merged in;
// others are looked up first and left off the board.
func (b *Board) Transition(ctx context.Context, creds client.Credentials, id models.ID, action Action) (models.Order, error) {
	order, cached := b.Order(id)
	if !cached {
		detail, err := b.backend.OrderDetail(ctx, creds, id)
		if err != nil {
			return models.Order{}, fmt.Errorf("order %s: %w", id, err)
		}
		order = detail
	}

	target, err := Target(order.Estado, action)
	if err != nil {
		return order, err
	}
	if err := b.backend.UpdateOrderStatus(ctx, creds, id, target); err != nil {
		return order, err
	}

	if !cached {
		order.Estado = target
		return order, nil
	}
	patch, _ := json.Marshal(map[string]any{"id": id, "estado": target})
	updated, _ := b.Apply(models.LiveEvent{Tipo: models.EventOrdenActualizada, Orden: patch})
	return updated, nil
}

// Subscribe registers a listener for applied changes. Slow listeners miss
// changes instead of blocking the board.
func (b *Board) Subscribe() (string, <-chan Change) {
	id := uuid.New().String()
	ch := make(chan Change, subscriberBuffer)

	b.subMu.Lock()
	b.subscribers[id] = ch
	total := len(b.subscribers)
	b.subMu.Unlock()

	utils.Info().WithField("subscriber_id", id).WithField("total_subscribers", total).Info("board subscriber added")
	return id, ch
}

func (b *Board) Unsubscribe(id string) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Close drops every subscriber.
func (b *Board) Close() {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

// broadcast never blocks; it runs with b.mu held.
func (b *Board) broadcast(c Change) {
	b.subMu.RLock()
	defer b.subMu.RUnlock()
	for id, ch := range b.subscribers {
		select {
		case ch <- c:
		default:
			utils.Info().WithField("subscriber_id", id).Info("subscriber channel full, dropping change")
		}
	}
}
