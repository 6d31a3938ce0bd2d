// Package corte computes the daily cash reconciliation of a branch.
package corte

import (
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

// KPIs summarize one day of orders. Money and percentages carry two decimals.
type KPIs struct {
	VentaTotal        models.Money `json:"ventaTotal"`
	NumOrdenes        int          `json:"numOrdenes"`
	TicketPromedio    models.Money `json:"ticketPromedio"`
	Eficiencia        models.Money `json:"eficiencia"`
	PorComerAqui      int          `json:"porComerAqui"`
	PorParaLlevar     int          `json:"porParaLlevar"`
	OrdenesRechazadas int          `json:"ordenesRechazadas"`
	TotalOrdenes      int          `json:"totalOrdenes"`
}

var hundred = decimal.NewFromInt(100)

// Compute derives the KPIs from the day's orders. Only completed orders count
// as sales; averages are zero when there is nothing to divide by.
func Compute(orders []models.Order) KPIs {
	k := KPIs{
		VentaTotal:     decimal.Zero,
		TicketPromedio: decimal.Zero,
		Eficiencia:     decimal.Zero,
		TotalOrdenes:   len(orders),
	}

	for _, o := range orders {
		switch o.Estado {
		case models.StatusCompletada:
			k.NumOrdenes++
			k.VentaTotal = k.VentaTotal.Add(o.Total)
			switch o.TipoOrden {
			case models.KindComerAqui:
				k.PorComerAqui++
			case models.KindParaLlevar:
				k.PorParaLlevar++
			}
		case models.StatusRechazada:
			k.OrdenesRechazadas++
		}
	}

	if k.NumOrdenes > 0 {
		k.TicketPromedio = k.VentaTotal.Div(decimal.NewFromInt(int64(k.NumOrdenes)))
	}
	if k.TotalOrdenes > 0 {
		k.Eficiencia = decimal.NewFromInt(int64(k.NumOrdenes)).Mul(hundred).Div(decimal.NewFromInt(int64(k.TotalOrdenes)))
	}

	k.VentaTotal = k.VentaTotal.Round(2)
	k.TicketPromedio = k.TicketPromedio.Round(2)
	k.Eficiencia = k.Eficiencia.Round(2)
	return k
}

// Reconciliation compares the counted cash with the gross sales.
type Reconciliation struct {
	Efectivo   models.Money `json:"efectivo"`
	VentaTotal models.Money `json:"ventaTotal"`
	Diferencia models.Money `json:"diferencia"`
	// Sobrante is true when the drawer holds at least the gross sales.
	Sobrante bool `json:"sobrante"`
}

func Difference(counted, gross models.Money) Reconciliation {
	diff := counted.Sub(gross).Round(2)
	return Reconciliation{
		Efectivo:   counted.Round(2),
		VentaTotal: gross.Round(2),
		Diferencia: diff,
		Sobrante:   !diff.IsNegative(),
	}
}
