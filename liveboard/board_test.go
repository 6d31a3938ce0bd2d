package liveboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

func init() {
	utils.SilenceLogger()
}

type fakeBackend struct {
	snapshot  []models.Order
	detail    models.Order
	detailErr error
	statusErr error
	updates   []models.OrderStatus
}

func (f *fakeBackend) LiveSnapshot(context.Context, client.Credentials, int64) ([]models.Order, error) {
	return f.snapshot, nil
}

func (f *fakeBackend) OrderDetail(context.Context, client.Credentials, models.ID) (models.Order, error) {
	return f.detail, f.detailErr
}

func (f *fakeBackend) UpdateOrderStatus(_ context.Context, _ client.Credentials, _ models.ID, s models.OrderStatus) error {
	f.updates = append(f.updates, s)
	return f.statusErr
}

func loadedBoard(t *testing.T, backend *fakeBackend) *Board {
	t.Helper()
	backend.snapshot = seed()
	b := NewBoard(backend, 1)
	require.NoError(t, b.Load(context.Background(), client.Credentials{}))
	return b
}

func TestBoardApplyNotifiesSubscribers(t *testing.T) {
	b := loadedBoard(t, &fakeBackend{})
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	_, ok := b.Apply(event(models.EventOrdenNueva, `{"id":7,"estado":"PENDIENTE"}`))
	require.True(t, ok)

	select {
	case c := <-ch:
		assert.Equal(t, models.EventOrdenNueva, c.Tipo)
		assert.Equal(t, models.ID("7"), c.Orden.ID)
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
	assert.Len(t, b.Lanes().Pendientes, 2)
}

func TestBoardChangesArriveInApplyOrder(t *testing.T) {
	b := loadedBoard(t, &fakeBackend{})
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Apply(event(models.EventOrdenActualizada, fmt.Sprintf(`{"id":1,"notas":"n%d"}`, i)))
		}(i)
	}
	wg.Wait()

	var last Change
	for i := 0; i < writers; i++ {
		last = <-ch
	}
	current, ok := b.Order("1")
	require.True(t, ok)
	assert.Equal(t, current.Notas, last.Orden.Notas)
}

func TestBoardUnsubscribeClosesChannel(t *testing.T) {
	b := NewBoard(&fakeBackend{}, 1)
	id, ch := b.Subscribe()
	b.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
}

func TestBoardDetail(t *testing.T) {
	backend := &fakeBackend{detail: models.Order{
		ID:            "1",
		UsuarioNombre: "Ana López",
		TipoOrden:     models.KindParaLlevar,
		Productos:     []models.OrderLine{{ProductoNombre: "Latte", Cantidad: 2}},
	}}
	b := loadedBoard(t, backend)

	got, err := b.Detail(context.Background(), client.Credentials{}, "1")
	require.NoError(t, err)
	assert.Equal(t, "Ana López", got.Usuario)
	assert.Equal(t, models.StatusPendiente, got.Estado)
	assert.Equal(t, "Para llevar", got.Destination())
	assert.Equal(t, 2, got.ItemCount())

	backend.detailErr = errors.New("down")
	got, err = b.Detail(context.Background(), client.Credentials{}, "1")
	assert.Error(t, err)
	assert.Equal(t, "ana", got.Usuario)
}

func TestBoardTransition(t *testing.T) {
	backend := &fakeBackend{}
	b := loadedBoard(t, backend)

	got, err := b.Transition(context.Background(), client.Credentials{}, "1", Accept)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparando, got.Estado)
	assert.Equal(t, []models.OrderStatus{models.StatusPreparando}, backend.updates)

	_, err = b.Transition(context.Background(), client.Credentials{}, "1", Accept)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, backend.updates, 1)

	backend.detailErr = client.ErrNotFound
	_, err = b.Transition(context.Background(), client.Credentials{}, "404", Accept)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestBoardTransitionOffBoardOrder(t *testing.T) {
	backend := &fakeBackend{detail: models.Order{ID: "77", Estado: models.StatusPreparando}}
	b := loadedBoard(t, backend)

	got, err := b.Transition(context.Background(), client.Credentials{}, "77", Complete)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompletada, got.Estado)
	assert.Len(t, b.Orders(), 2, "orders from other days stay off the board")
	assert.True(t, b.Loaded())
}

func TestBoardTransitionBackendFailureKeepsStatus(t *testing.T) {
	backend := &fakeBackend{statusErr: errors.New("boom")}
	b := loadedBoard(t, backend)

	_, err := b.Transition(context.Background(), client.Credentials{}, "2", Complete)
	assert.Error(t, err)
	o, _ := b.Order("2")
	assert.Equal(t, models.StatusPreparando, o.Estado)
}

type fakeSession struct {
	mu      sync.Mutex
	expired bool
}

func (s *fakeSession) Credentials() client.Credentials { return client.Credentials{Token: "svc"} }

func (s *fakeSession) Expire() {
	s.mu.Lock()
	s.expired = true
	s.mu.Unlock()
}

type fakeStreamer struct {
	mu      sync.Mutex
	bodies  []io.ReadCloser
	lastIDs []string
	err     error
	opened  chan struct{}
}

func (f *fakeStreamer) OpenLiveStream(_ context.Context, _ client.Credentials, _ int64, lastEventID string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastIDs = append(f.lastIDs, lastEventID)
	defer func() {
		select {
		case f.opened <- struct{}{}:
		default:
		}
	}()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.bodies) == 0 {
		pr, _ := io.Pipe()
		return pr, nil
	}
	body := f.bodies[0]
	f.bodies = f.bodies[1:]
	return body, nil
}

func TestConsumerAppliesEventsAndResumes(t *testing.T) {
	b := NewBoard(&fakeBackend{}, 1)
	stream := "retry: 10\n\n" +
		": keepalive\n\n" +
		"id: 41\ndata: {\"tipo\":\"ORDEN_NUEVA\",\"orden\":{\"id\":1,\"estado\":\"PENDIENTE\"}}\n\n" +
		"data: heartbeat\n\n" +
		"id: 42\nevent: message\ndata: {\"tipo\":\"ORDEN_ACTUALIZADA\",\n" +
		"data: \"orden\":{\"id\":1,\"estado\":\"PREPARANDO\"}}\n\n"
	streamer := &fakeStreamer{
		bodies: []io.ReadCloser{io.NopCloser(strings.NewReader(stream))},
		opened: make(chan struct{}, 4),
	}
	c := NewConsumer(b, streamer, &fakeSession{})
	c.Start(context.Background())

	require.Eventually(t, func() bool {
		streamer.mu.Lock()
		defer streamer.mu.Unlock()
		return len(streamer.lastIDs) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	c.Stop()

	orders := b.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusPreparando, orders[0].Estado)
	assert.Equal(t, "42", c.LastEventID())

	streamer.mu.Lock()
	defer streamer.mu.Unlock()
	assert.Equal(t, []string{"", "42"}, streamer.lastIDs[:2])
}

func TestConsumerStopsOnUnauthorized(t *testing.T) {
	session := &fakeSession{}
	streamer := &fakeStreamer{err: client.ErrUnauthorized, opened: make(chan struct{}, 1)}
	c := NewConsumer(NewBoard(&fakeBackend{}, 1), streamer, session)
	c.Start(context.Background())

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
	session.mu.Lock()
	assert.True(t, session.expired)
	session.mu.Unlock()
	c.Stop()
}
