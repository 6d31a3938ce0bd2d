package liveboard

import "github.com/yeremiapane/restaurant-backoffice/models"

// Lanes is the board split by status. Orders with any other status are not shown.
type Lanes struct {
	Pendientes  []models.Order `json:"pendientes"`
	Preparando  []models.Order `json:"preparando"`
	Completadas []models.Order `json:"completadas"`
	Rechazadas  []models.Order `json:"rechazadas"`
}

func SplitLanes(orders []models.Order) Lanes {
	l := Lanes{
		Pendientes:  []models.Order{},
		Preparando:  []models.Order{},
		Completadas: []models.Order{},
		Rechazadas:  []models.Order{},
	}
	for _, o := range orders {
		switch o.Estado {
		case models.StatusPendiente:
			l.Pendientes = append(l.Pendientes, o)
		case models.StatusPreparando:
			l.Preparando = append(l.Preparando, o)
		case models.StatusCompletada:
			l.Completadas = append(l.Completadas, o)
		case models.StatusRechazada:
			l.Rechazadas = append(l.Rechazadas, o)
		}
	}
	return l
}

func (l Lanes) Total() int {
	return len(l.Pendientes) + len(l.Preparando) + len(l.Completadas) + len(l.Rechazadas)
}
