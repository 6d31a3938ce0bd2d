package models

import (
	"encoding/json"
	"fmt"
)

// MergeOrder overwrites the top-level fields of base with the fields present in
// patch. Fields missing from patch keep their value from base. Nested values are
// replaced whole, never merged.
func MergeOrder(base Order, patch json.RawMessage) (Order, error) {
	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(patch, &incoming); err != nil {
		return base, fmt.Errorf("decode order patch: %w", err)
	}

	current, err := json.Marshal(base)
	if err != nil {
		return base, fmt.Errorf("encode order: %w", err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(current, &fields); err != nil {
		return base, fmt.Errorf("decode order: %w", err)
	}
	for k, v := range incoming {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return base, fmt.Errorf("encode merged order: %w", err)
	}
	var out Order
	if err := json.Unmarshal(merged, &out); err != nil {
		return base, fmt.Errorf("decode merged order: %w", err)
	}
	return out, nil
}

// DecodeOrder reads a full or partial order payload.
func DecodeOrder(raw json.RawMessage) (Order, error) {
	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return Order{}, fmt.Errorf("decode order: %w", err)
	}
	return o, nil
}

// MergeDetail combines an order already on screen with its full detail. Detail
// fields win, except that the display name of the user is preferred and the
// order kind and table fall back to the cached order.
func MergeDetail(cached, detail Order) Order {
	raw, err := json.Marshal(detail)
	if err != nil {
		return cached
	}
	out, err := MergeOrder(cached, raw)
	if err != nil {
		return cached
	}

	out.Usuario = firstNonEmpty(detail.UsuarioNombre, cached.Usuario, detail.Usuario)
	out.Estado = OrderStatus(firstNonEmpty(string(detail.Estado), string(cached.Estado)))
	out.TipoOrden = OrderKind(firstNonEmpty(string(detail.TipoOrden), string(cached.TipoOrden), string(KindComerAqui)))

	switch {
	case out.TipoOrden == KindParaLlevar:
		out.Mesa = &TableRef{Label: "Para llevar"}
	case detail.Mesa != nil && detail.Mesa.String() != "":
		out.Mesa = detail.Mesa
	default:
		out.Mesa = cached.Mesa
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
