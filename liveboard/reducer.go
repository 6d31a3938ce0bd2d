// Package liveboard keeps today's orders of one branch in memory and applies
// the live stream to them.
package liveboard

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

// ParseEvent decodes the data of one stream message. Heartbeats and anything
// else that is not an order envelope report ok=false.
func ParseEvent(data string) (models.LiveEvent, bool) {
	var evt models.LiveEvent
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return models.LiveEvent{}, false
	}
	switch evt.Tipo {
	case models.EventOrdenNueva, models.EventOrdenActualizada, models.EventOrdenExistente:
	default:
		return models.LiveEvent{}, false
	}
	if len(bytes.TrimSpace(evt.Orden)) == 0 || evt.Orden[0] != '{' {
		return models.LiveEvent{}, false
	}
	return evt, true
}

// Reduce applies evt to orders and returns the new list; orders is not
// modified. An order already in the list is merged field by field, an unknown
// one is prepended. Applying the same event twice gives the same list.
func Reduce(orders []models.Order, evt models.LiveEvent) []models.Order {
	out, _, _ := reduce(orders, evt)
	return out
}

func reduce(orders []models.Order, evt models.LiveEvent) ([]models.Order, models.Order, bool) {
	incoming, err := models.DecodeOrder(evt.Orden)
	if err != nil || incoming.ID == "" {
		return slices.Clone(orders), models.Order{}, false
	}

	if i := indexOf(orders, incoming.ID); i >= 0 {
		merged, err := models.MergeOrder(orders[i], evt.Orden)
		if err != nil {
			return slices.Clone(orders), models.Order{}, false
		}
		out := slices.Clone(orders)
		out[i] = merged
		return out, merged, true
	}

	// Built through the same merge as known orders so a replay compares equal.
	added, err := models.MergeOrder(models.Order{}, evt.Orden)
	if err != nil {
		return slices.Clone(orders), models.Order{}, false
	}
	out := make([]models.Order, 0, len(orders)+1)
	out = append(out, added)
	out = append(out, orders...)
	return out, added, true
}

func indexOf(orders []models.Order, id models.ID) int {
	for i, o := range orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}
