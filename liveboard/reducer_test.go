package liveboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

func event(tipo models.LiveEventType, orden string) models.LiveEvent {
	return models.LiveEvent{Tipo: tipo, Orden: []byte(orden)}
}

func seed() []models.Order {
	return []models.Order{
		{ID: "1", Estado: models.StatusPendiente, Usuario: "ana", Total: models.NewMoney(120)},
		{ID: "2", Estado: models.StatusPreparando, Usuario: "luis", Total: models.NewMoney(80)},
	}
}

func TestParseEvent(t *testing.T) {
	evt, ok := ParseEvent(`{"tipo":"ORDEN_NUEVA","orden":{"id":5}}`)
	require.True(t, ok)
	assert.Equal(t, models.EventOrdenNueva, evt.Tipo)

	for _, data := range []string{"ping", "", `{"tipo":"OTRO","orden":{"id":1}}`, `{"tipo":"ORDEN_NUEVA"}`, `{"tipo":"ORDEN_NUEVA","orden":null}`} {
		_, ok := ParseEvent(data)
		assert.False(t, ok, data)
	}
}

func TestReduceKnownIDDoesNotGrow(t *testing.T) {
	for _, tipo := range []models.LiveEventType{models.EventOrdenNueva, models.EventOrdenActualizada, models.EventOrdenExistente} {
		out := Reduce(seed(), event(tipo, `{"id":2,"estado":"COMPLETADA"}`))
		require.Len(t, out, 2, tipo)
		assert.Equal(t, models.StatusCompletada, out[1].Estado)
		assert.Equal(t, "luis", out[1].Usuario, "fields absent from the event are kept")
		assert.True(t, models.NewMoney(80).Equal(out[1].Total))
	}
}

func TestReduceUnknownIDPrepends(t *testing.T) {
	for _, tipo := range []models.LiveEventType{models.EventOrdenNueva, models.EventOrdenActualizada, models.EventOrdenExistente} {
		out := Reduce(seed(), event(tipo, `{"id":9,"estado":"PENDIENTE","total":50}`))
		require.Len(t, out, 3, tipo)
		assert.Equal(t, models.ID("9"), out[0].ID)
	}
}

func TestReduceReplayIsIdempotent(t *testing.T) {
	events := []models.LiveEvent{
		event(models.EventOrdenNueva, `{"id":9,"estado":"PENDIENTE","usuario":"eva"}`),
		event(models.EventOrdenActualizada, `{"id":1,"estado":"PREPARANDO"}`),
	}
	for _, e := range events {
		once := Reduce(seed(), e)
		twice := Reduce(once, e)
		assert.Equal(t, once, twice)
	}
}

func TestReduceReplayOfNewOrderIsIdempotent(t *testing.T) {
	e := event(models.EventOrdenNueva, `{"id":9,"estado":"PENDIENTE","total":50,"numeroOrden":"A-9"}`)
	once := Reduce(nil, e)
	assert.Equal(t, once, Reduce(once, e))
	assert.Equal(t, once, Reduce(Reduce(once, e), e))
}

func TestReduceKeepsFieldsTheBoardDoesNotModel(t *testing.T) {
	out := Reduce(nil, event(models.EventOrdenNueva, `{"id":1,"numeroOrden":"A-17","sucursalId":3,"estado":"PENDIENTE","total":35}`))
	out = Reduce(out, event(models.EventOrdenActualizada, `{"id":1,"estado":"PREPARANDO"}`))
	require.Len(t, out, 1)

	b, err := json.Marshal(out[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"numeroOrden":"A-17","sucursalId":3,"estado":"PREPARANDO","total":35}`, string(b))
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	in := seed()
	_ = Reduce(in, event(models.EventOrdenActualizada, `{"id":1,"estado":"RECHAZADA"}`))
	assert.Equal(t, seed(), in)
}

func TestReduceIgnoresOrdersWithoutID(t *testing.T) {
	out := Reduce(seed(), event(models.EventOrdenNueva, `{"estado":"PENDIENTE"}`))
	assert.Equal(t, seed(), out)
}

func TestSplitLanes(t *testing.T) {
	orders := append(seed(),
		models.Order{ID: "3", Estado: models.StatusCompletada},
		models.Order{ID: "4", Estado: "ARCHIVADA"},
	)
	l := SplitLanes(orders)
	assert.Len(t, l.Pendientes, 1)
	assert.Len(t, l.Preparando, 1)
	assert.Len(t, l.Completadas, 1)
	assert.NotNil(t, l.Rechazadas)
	assert.Empty(t, l.Rechazadas)
	assert.Equal(t, 3, l.Total())
}

func TestTarget(t *testing.T) {
	to, err := Target(models.StatusPendiente, Accept)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparando, to)

	to, err = Target(models.StatusPreparando, Cancel)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRechazada, to)

	_, err = Target(models.StatusCompletada, Complete)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Target(models.StatusPendiente, Action("borrar"))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, ok := ParseAction("rechazar")
	assert.True(t, ok)
}
