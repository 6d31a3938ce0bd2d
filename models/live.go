package models

import "encoding/json"

type LiveEventType string

const (
	EventOrdenNueva       LiveEventType = "ORDEN_NUEVA"
	EventOrdenActualizada LiveEventType = "ORDEN_ACTUALIZADA"
	EventOrdenExistente   LiveEventType = "ORDEN_EXISTENTE"
)

// LiveEvent is one message of the live order stream. Orden may be partial.
type LiveEvent struct {
	Tipo  LiveEventType   `json:"tipo"`
	Orden json.RawMessage `json:"orden"`
}
