package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/reorder"
	"github.com/yeremiapane/restaurant-backoffice/validation"
)

var ErrBadPayload = errors.New("invalid request body")

// Labels name a catalog entity in staff-facing messages.
type Labels struct {
	Singular string
	Plural   string
	Feminine bool
}

func (l Labels) participle(stem string) string {
	if l.Feminine {
		return stem + "a"
	}
	return stem + "o"
}

func (l Labels) article() string {
	if l.Feminine {
		return "las"
	}
	return "los"
}

func (l Labels) Created() string { return l.Singular + " " + l.participle("cread") + " exitosamente" }
func (l Labels) Updated() string { return l.Singular + " " + l.participle("actualizad") + " exitosamente" }
func (l Labels) Deleted() string { return l.Singular + " " + l.participle("eliminad") + " exitosamente" }
func (l Labels) LoadFailed() string {
	return "Error al cargar " + l.article() + " " + strings.ToLower(l.Plural)
}
func (l Labels) SaveFailed() string {
	return "Error al guardar " + strings.ToLower(l.Singular)
}
func (l Labels) DeleteFailed() string {
	return "Error al eliminar " + strings.ToLower(l.Singular)
}

// CatalogResource is one admin screen's backend surface with JSON in and out.
type CatalogResource interface {
	Name() string
	Labels() Labels
	List(ctx context.Context, creds client.Credentials) (any, error)
	Get(ctx context.Context, creds client.Credentials, id int64) (any, error)
	Create(ctx context.Context, creds client.Credentials, body []byte) (any, error)
	Update(ctx context.Context, creds client.Credentials, id int64, body []byte) (any, error)
	Delete(ctx context.Context, creds client.Credentials, id int64) error
	Reorder(ctx context.Context, creds client.Credentials, activeID, overID int64) (*models.Notice, any, error)
}

type catalogResource[T reorder.Item[T]] struct {
	name     string
	labels   Labels
	res      *client.Resource[T]
	store    *reorder.Store[T]
	validate func(T) (T, validation.FieldErrors)
	audit    *AuditService
}

func newCatalogResource[T reorder.Item[T]](name string, labels Labels, res *client.Resource[T], validate func(T) (T, validation.FieldErrors), audit *AuditService) *catalogResource[T] {
	return &catalogResource[T]{
		name:     name,
		labels:   labels,
		res:      res,
		store:    reorder.NewStore[T](strings.ToLower(labels.Plural), res.List, res.Reorder),
		validate: validate,
		audit:    audit,
	}
}

func (r *catalogResource[T]) Name() string { return r.name }

func (r *catalogResource[T]) Labels() Labels { return r.labels }

func (r *catalogResource[T]) List(ctx context.Context, creds client.Credentials) (any, error) {
	return r.store.Load(ctx, creds)
}

func (r *catalogResource[T]) Get(ctx context.Context, creds client.Credentials, id int64) (any, error) {
	return r.res.Get(ctx, creds, id)
}

func (r *catalogResource[T]) decode(body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	v, errs := r.validate(v)
	if len(errs) > 0 {
		return v, errs
	}
	return v, nil
}

func (r *catalogResource[T]) Create(ctx context.Context, creds client.Credentials, body []byte) (any, error) {
	v, err := r.decode(body)
	if err != nil {
		return nil, err
	}
	out, err := r.res.Create(ctx, creds, v)
	r.audit.Record(ctx, AuditCreate, r.name, strconv.FormatInt(out.EntityID(), 10), "", err == nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogResource[T]) Update(ctx context.Context, creds client.Credentials, id int64, body []byte) (any, error) {
	v, err := r.decode(body)
	if err != nil {
		return nil, err
	}
	out, err := r.res.Update(ctx, creds, id, v)
	r.audit.Record(ctx, AuditUpdate, r.name, strconv.FormatInt(id, 10), "", err == nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogResource[T]) Delete(ctx context.Context, creds client.Credentials, id int64) error {
	err := r.res.Delete(ctx, creds, id)
	r.audit.Record(ctx, AuditDelete, r.name, strconv.FormatInt(id, 10), "", err == nil)
	return err
}

// Reorder refreshes the list and moves activeID onto overID.
func (r *catalogResource[T]) Reorder(ctx context.Context, creds client.Credentials, activeID, overID int64) (*models.Notice, any, error) {
	if _, err := r.store.Load(ctx, creds); err != nil {
		return nil, nil, err
	}
	notice, err := r.store.Move(ctx, creds, activeID, overID)
	if notice != nil {
		detail := fmt.Sprintf("%d -> %d", activeID, overID)
		r.audit.Record(ctx, AuditReorder, r.name, strconv.FormatInt(activeID, 10), detail, err == nil)
	}
	return notice, r.store.Items(), err
}

// CatalogService serves every catalog screen by resource name.
type CatalogService struct {
	Client    *client.Client
	resources map[string]CatalogResource
}

func NewCatalogService(c *client.Client, audit *AuditService) *CatalogService {
	catalog := client.NewCatalog(c)

	modificadores := newCatalogResource("modificadores", Labels{"Modificador", "Modificadores", false}, catalog.Modificadores,
		func(m models.Modificador) (models.Modificador, validation.FieldErrors) { return m, validation.Modifier(m) }, audit)
	modificadores.store.GroupOf = models.Modificador.TypeID
	modificadores.store.Success = func(m models.Modificador) string {
		tipo := ""
		if m.TipoModificador != nil {
			tipo = m.TipoModificador.Nombre
		}
		return fmt.Sprintf("Orden de modificadores %q actualizado correctamente", tipo)
	}

	resources := []CatalogResource{
		newCatalogResource("categorias", Labels{"Categoría", "Categorías", true}, catalog.Categorias,
			func(v models.Categoria) (models.Categoria, validation.FieldErrors) { return v, validation.Category(v) }, audit),
		newCatalogResource("subcategorias", Labels{"Subcategoría", "Subcategorías", true}, catalog.Subcategorias,
			func(v models.Subcategoria) (models.Subcategoria, validation.FieldErrors) { return v, validation.Subcategory(v) }, audit),
		newCatalogResource("productos", Labels{"Producto", "Productos", false}, catalog.Productos, validation.Product, audit),
		newCatalogResource("mesas", Labels{"Mesa", "Mesas", true}, catalog.Mesas,
			func(v models.Mesa) (models.Mesa, validation.FieldErrors) { return v, validation.Table(v) }, audit),
		modificadores,
		newCatalogResource("tipos-modificador", Labels{"Tipo de modificador", "Tipos de modificador", false}, catalog.TiposModificador,
			func(v models.TipoModificador) (models.TipoModificador, validation.FieldErrors) {
				return v, validation.ModifierType(v)
			}, audit),
		newCatalogResource("tamanos", Labels{"Tamaño", "Tamaños", false}, catalog.Tamanos,
			func(v models.Tamano) (models.Tamano, validation.FieldErrors) { return v, validation.Size(v) }, audit),
	}

	s := &CatalogService{Client: c, resources: make(map[string]CatalogResource, len(resources))}
	for _, r := range resources {
		s.resources[r.Name()] = r
	}
	return s
}

func (s *CatalogService) Resource(name string) (CatalogResource, bool) {
	r, ok := s.resources[name]
	return r, ok
}

func (s *CatalogService) Names() []string {
	names := make([]string, 0, len(s.resources))
	for name := range s.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *CatalogService) ProductsBySubcategory(ctx context.Context, creds client.Credentials, subcategoriaID int64) ([]models.Producto, error) {
	return s.Client.ProductsBySubcategory(ctx, creds, subcategoriaID)
}
