// Package history browses past orders: the query sent to the backend, the
// pagination arithmetic and the infinite-scroll state of the list.
package history

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 1000
	DefaultSort  = "fechaCreacion"
	OrderAsc     = "asc"
	OrderDesc    = "desc"

	dateLayout = "2006-01-02"
)

var ErrInvalidQuery = errors.New("invalid history query")

type Filters struct {
	Estado      string `json:"estado,omitempty" form:"estado"`
	Fecha       string `json:"fecha,omitempty" form:"fecha"`
	Usuario     string `json:"usuario,omitempty" form:"usuario"`
	NumeroOrden string `json:"numeroOrden,omitempty" form:"numeroOrden"`
}

func (f Filters) Empty() bool {
	return f == Filters{}
}

type Query struct {
	Page    int     `json:"page" form:"page"`
	Limit   int     `json:"limit" form:"limit"`
	Sort    string  `json:"sort" form:"sort"`
	Order   string  `json:"order" form:"order"`
	Filters Filters `json:"filters"`
}

func DefaultQuery() Query {
	return Query{Page: 1, Limit: DefaultLimit, Sort: DefaultSort, Order: OrderDesc}
}

// WithDefaults fills zero fields with the defaults.
func (q Query) WithDefaults() Query {
	d := DefaultQuery()
	if q.Page <= 0 {
		q.Page = d.Page
	}
	if q.Limit <= 0 {
		q.Limit = d.Limit
	}
	if q.Sort == "" {
		q.Sort = d.Sort
	}
	if q.Order == "" {
		q.Order = d.Order
	}
	q.Order = strings.ToLower(q.Order)
	q.Filters.Estado = strings.ToUpper(strings.TrimSpace(q.Filters.Estado))
	q.Filters.Fecha = strings.TrimSpace(q.Filters.Fecha)
	q.Filters.Usuario = strings.TrimSpace(q.Filters.Usuario)
	q.Filters.NumeroOrden = strings.TrimSpace(q.Filters.NumeroOrden)
	return q
}

func (q Query) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1", ErrInvalidQuery)
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidQuery, MaxLimit)
	}
	if q.Order != OrderAsc && q.Order != OrderDesc {
		return fmt.Errorf("%w: order must be asc or desc", ErrInvalidQuery)
	}
	if q.Filters.Fecha != "" {
		if _, err := time.Parse(dateLayout, q.Filters.Fecha); err != nil {
			return fmt.Errorf("%w: fecha must be YYYY-MM-DD", ErrInvalidQuery)
		}
	}
	if q.Filters.Estado != "" && !models.OrderStatus(q.Filters.Estado).Valid() {
		return fmt.Errorf("%w: unknown estado %q", ErrInvalidQuery, q.Filters.Estado)
	}
	return nil
}

// Values encodes the query for /ordenes/historial. Empty filters are left out.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("sort", q.Sort)
	v.Set("order", q.Order)
	for key, val := range map[string]string{
		"estado":      q.Filters.Estado,
		"fecha":       q.Filters.Fecha,
		"usuario":     q.Filters.Usuario,
		"numeroOrden": q.Filters.NumeroOrden,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

// Toggle returns the query sorted by field: the same field flips direction,
// another field starts descending. The page goes back to 1.
func (q Query) Toggle(field string) Query {
	if q.Sort == field && q.Order == OrderDesc {
		q.Order = OrderAsc
	} else {
		q.Order = OrderDesc
	}
	q.Sort = field
	q.Page = 1
	return q
}
