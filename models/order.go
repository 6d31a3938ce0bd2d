package models

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

type OrderStatus string

const (
	StatusPendiente  OrderStatus = "PENDIENTE"
	StatusPreparando OrderStatus = "PREPARANDO"
	StatusCompletada OrderStatus = "COMPLETADA"
	StatusRechazada  OrderStatus = "RECHAZADA"
)

// UnmarshalJSON upper-cases the status; some payloads send "pendiente".
func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return nil
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPendiente, StatusPreparando, StatusCompletada, StatusRechazada:
		return true
	}
	return false
}

type OrderKind string

const (
	KindComerAqui  OrderKind = "COMER_AQUI"
	KindParaLlevar OrderKind = "PARA_LLEVAR"
)

type Order struct {
	ID            ID          `json:"id"`
	Usuario       string      `json:"usuario,omitempty"`
	UsuarioNombre string      `json:"usuarioNombre,omitempty"`
	FechaCreacion string      `json:"fechaCreacion,omitempty"`
	Estado        OrderStatus `json:"estado,omitempty"`
	TipoOrden     OrderKind   `json:"tipoOrden,omitempty"`
	Mesa          *TableRef   `json:"mesa,omitempty"`
	Articulos     int         `json:"articulos,omitempty"`
	Total         Money       `json:"total"`
	Notas         string      `json:"notas,omitempty"`
	Productos     []OrderLine `json:"productos,omitempty"`

	// Extra keeps the payload fields Order does not model, such as
	// numeroOrden or sucursalId, so they survive merges and reach the browser.
	Extra map[string]json.RawMessage `json:"-"`
}

type orderFields Order

var knownOrderFields = func() map[string]bool {
	known := make(map[string]bool)
	t := reflect.TypeOf(orderFields{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			known[strings.ToLower(name)] = true
		}
	}
	return known
}()

func (o *Order) UnmarshalJSON(b []byte) error {
	var fields orderFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k := range raw {
		if knownOrderFields[strings.ToLower(k)] {
			delete(raw, k)
		}
	}
	if len(raw) == 0 {
		raw = nil
	}
	fields.Extra = raw
	*o = Order(fields)
	return nil
}

func (o Order) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(orderFields(o))
	if err != nil || len(o.Extra) == 0 {
		return b, err
	}
	out := make(map[string]json.RawMessage)
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range o.Extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// Destination is what the board shows in the table column.
func (o Order) Destination() string {
	if o.TipoOrden == KindParaLlevar {
		return "Para llevar"
	}
	if o.Mesa == nil || o.Mesa.String() == "" {
		return "---"
	}
	return o.Mesa.String()
}

// ItemCount sums line quantities when the detail is loaded, falling back to
// the summary count otherwise.
func (o Order) ItemCount() int {
	if len(o.Productos) == 0 {
		return o.Articulos
	}
	n := 0
	for _, p := range o.Productos {
		n += p.Cantidad
	}
	return n
}

type OrderLine struct {
	ID             ID             `json:"id,omitempty"`
	ProductoNombre string         `json:"productoNombre,omitempty"`
	Cantidad       int            `json:"cantidad"`
	TamanoNombre   string         `json:"tamanoNombre,omitempty"`
	Modificadores  []LineModifier `json:"modificadores,omitempty"`
	Subtotal       Money          `json:"subtotal"`
}

type LineModifier struct {
	ID                ID     `json:"id,omitempty"`
	ModificadorNombre string `json:"modificadorNombre,omitempty"`
	Subtotal          Money  `json:"subtotal"`
}

// TableRef is the table an order is served at. The backend sends a bare number,
// a string, or an object {"numero": n}.
type TableRef struct {
	Numero int
	Label  string
}

func (t *TableRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = TableRef{}
		return nil
	case len(b) > 0 && b[0] == '{':
		var obj struct {
			Numero json.RawMessage `json:"numero"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		if len(obj.Numero) == 0 {
			*t = TableRef{}
			return nil
		}
		return t.UnmarshalJSON(obj.Numero)
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if n, err := strconv.Atoi(s); err == nil {
			*t = TableRef{Numero: n}
			return nil
		}
		*t = TableRef{Label: s}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = TableRef{Numero: n}
	return nil
}

func (t TableRef) MarshalJSON() ([]byte, error) {
	if t.Numero > 0 {
		return []byte(strconv.Itoa(t.Numero)), nil
	}
	if t.Label != "" {
		return json.Marshal(t.Label)
	}
	return []byte("null"), nil
}

func (t TableRef) String() string {
	if t.Numero > 0 {
		return strconv.Itoa(t.Numero)
	}
	return t.Label
}
