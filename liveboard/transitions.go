package liveboard

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

var ErrInvalidTransition = errors.New("invalid order transition")

// Action is a row button on the board.
type Action string

const (
	Accept   Action = "aceptar"
	Reject   Action = "rechazar"
	Complete Action = "completar"
	Cancel   Action = "cancelar"
)

var transitions = map[Action]struct {
	from, to models.OrderStatus
}{
	Accept:   {models.StatusPendiente, models.StatusPreparando},
	Reject:   {models.StatusPendiente, models.StatusRechazada},
	Complete: {models.StatusPreparando, models.StatusCompletada},
	Cancel:   {models.StatusPreparando, models.StatusRechazada},
}

func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := transitions[a]
	return a, ok
}

// Target returns the status an order in current moves to under a.
func Target(current models.OrderStatus, a Action) (models.OrderStatus, error) {
	t, ok := transitions[a]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a)
	}
	if current != t.from {
		return "", fmt.Errorf("%w: cannot %s an order in %s", ErrInvalidTransition, a, current)
	}
	return t.to, nil
}
