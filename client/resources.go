package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

// Resource is the CRUD surface shared by every catalog entity.
type Resource[T any] struct {
	c     *Client
	path  string
	label string
}

func NewResource[T any](c *Client, path, label string) *Resource[T] {
	return &Resource[T]{c: c, path: path, label: label}
}

func (r *Resource[T]) Path() string { return r.path }

func (r *Resource[T]) Label() string { return r.label }

func (r *Resource[T]) List(ctx context.Context, creds Credentials) ([]T, error) {
	op := "list " + r.label
	data, _, err := r.c.raw(ctx, creds, op, http.MethodGet, r.path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[T](op, data)
}

func (r *Resource[T]) Get(ctx context.Context, creds Credentials, id int64) (T, error) {
	var out T
	err := r.c.do(ctx, creds, "get "+r.label, http.MethodGet, fmt.Sprintf("%s/%d", r.path, id), nil, nil, &out)
	return out, err
}

func (r *Resource[T]) Create(ctx context.Context, creds Credentials, v T) (T, error) {
	var out T
	err := r.c.do(ctx, creds, "create "+r.label, http.MethodPost, r.path, nil, v, &out)
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, creds Credentials, id int64, v T) (T, error) {
	out := v
	err := r.c.do(ctx, creds, "update "+r.label, http.MethodPut, fmt.Sprintf("%s/%d", r.path, id), nil, v, &out)
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, creds Credentials, id int64) error {
	return r.c.do(ctx, creds, "delete "+r.label, http.MethodDelete, fmt.Sprintf("%s/%d", r.path, id), nil, nil, nil)
}

// Reorder persists new positions with one bulk request.
func (r *Resource[T]) Reorder(ctx context.Context, creds Credentials, positions []models.Position) error {
	return r.c.do(ctx, creds, "reorder "+r.label, http.MethodPut, r.path+"/reorder", nil, positions, nil)
}

// Catalog bundles the backend resources of the admin screens.
type Catalog struct {
	Categorias       *Resource[models.Categoria]
	Subcategorias    *Resource[models.Subcategoria]
	Productos        *Resource[models.Producto]
	Mesas            *Resource[models.Mesa]
	Modificadores    *Resource[models.Modificador]
	TiposModificador *Resource[models.TipoModificador]
	Tamanos          *Resource[models.Tamano]
}

func NewCatalog(c *Client) *Catalog {
	return &Catalog{
		Categorias:       NewResource[models.Categoria](c, "/categorias", "categorías"),
		Subcategorias:    NewResource[models.Subcategoria](c, "/subcategorias", "subcategorías"),
		Productos:        NewResource[models.Producto](c, "/productos", "productos"),
		Mesas:            NewResource[models.Mesa](c, "/mesas", "mesas"),
		Modificadores:    NewResource[models.Modificador](c, "/modificadores", "modificadores"),
		TiposModificador: NewResource[models.TipoModificador](c, "/tipos-modificador", "tipos de modificador"),
		Tamanos:          NewResource[models.Tamano](c, "/tamanos", "tamaños"),
	}
}

func (c *Client) ProductsBySubcategory(ctx context.Context, creds Credentials, subcategoriaID int64) ([]models.Producto, error) {
	const op = "list productos by subcategoría"
	data, _, err := c.raw(ctx, creds, op, http.MethodGet, fmt.Sprintf("/productos/subcategoria/%d", subcategoriaID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Producto](op, data)
}
