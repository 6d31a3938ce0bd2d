package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

// OrderHistory fetches one page of /ordenes/historial. A decoded page with
// success=false is returned as-is; callers decide how to show it.
func (c *Client) OrderHistory(ctx context.Context, creds Credentials, query url.Values) (models.HistoryPage, error) {
	var page models.HistoryPage
	err := c.do(ctx, creds, "order history", http.MethodGet, "/ordenes/historial", query, nil, &page)
	return page, err
}

func (c *Client) OrderDetail(ctx context.Context, creds Credentials, id models.ID) (models.Order, error) {
	var order models.Order
	err := c.do(ctx, creds, "order detail", http.MethodGet, "/ordenes/"+url.PathEscape(id.String()), nil, nil, &order)
	return order, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, creds Credentials, id models.ID, status models.OrderStatus) error {
	body := map[string]models.OrderStatus{"status": status}
	return c.do(ctx, creds, "update order status", http.MethodPut, "/ordenes/"+url.PathEscape(id.String())+"/status", nil, body, nil)
}

// LiveSnapshot returns today's orders for one branch.
func (c *Client) LiveSnapshot(ctx context.Context, creds Credentials, sucursalID int64) ([]models.Order, error) {
	const op = "live snapshot"
	data, _, err := c.raw(ctx, creds, op, http.MethodGet, fmt.Sprintf("/live/ordenes/%d", sucursalID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Order](op, data)
}
