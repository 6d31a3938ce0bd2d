package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

func (c *Client) Discounts(ctx context.Context, creds Credentials, sucursalID int64) ([]models.Descuento, error) {
	const op = "list descuentos"
	query := url.Values{"soloActivos": []string{"false"}}
	data, _, err := c.raw(ctx, creds, op, http.MethodGet, fmt.Sprintf("/v1/descuentos/sucursal/%d", sucursalID), query, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Descuento](op, data)
}

func (c *Client) SetDiscountActive(ctx context.Context, creds Credentials, id int64, activo bool) (models.Descuento, error) {
	out := models.Descuento{ID: id, Activo: activo}
	body := map[string]bool{"activo": activo}
	err := c.do(ctx, creds, "toggle descuento", http.MethodPut, fmt.Sprintf("/v1/descuentos/%d/activar", id), nil, body, &out)
	return out, err
}
