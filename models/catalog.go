package models

// Position is one entry of a bulk reorder request. Posicion is 1-based.
type Position struct {
	ID       int64 `json:"id"`
	Posicion int   `json:"posicion"`
}

type Categoria struct {
	ID         int64   `json:"id"`
	Nombre     string  `json:"nombre" validate:"notblank"`
	Posicion   int     `json:"posicion"`
	Activo     *bool   `json:"activo,omitempty"`
	ImagenURL  string  `json:"imagenUrl,omitempty"`
	Sucursales []int64 `json:"sucursales,omitempty"`
}

func (c Categoria) EntityID() int64 { return c.ID }

func (c Categoria) WithPosicion(p int) Categoria {
	c.Posicion = p
	return c
}

type Subcategoria struct {
	ID            int64   `json:"id"`
	Nombre        string  `json:"nombre" validate:"notblank"`
	CategoriaID   int64   `json:"categoriaId" validate:"required"`
	Posicion      int     `json:"posicion"`
	Sucursales    []int64 `json:"sucursales,omitempty"`
	Productos     []int64 `json:"productos,omitempty"`
	Modificadores []int64 `json:"modificadores,omitempty"`
}

func (s Subcategoria) EntityID() int64 { return s.ID }

func (s Subcategoria) WithPosicion(p int) Subcategoria {
	s.Posicion = p
	return s
}

// ProductSize is the price of a product in one size.
type ProductSize struct {
	TamanoID int64 `json:"tamanoId"`
	Precio   Money `json:"precio"`
}

type Producto struct {
	ID             int64         `json:"id"`
	Nombre         string        `json:"nombre" validate:"notblank"`
	Activo         bool          `json:"activo"`
	Precio         Money         `json:"precio" validate:"gt=0"`
	ImagenURL      string        `json:"imagenUrl,omitempty" validate:"omitempty,url"`
	SubcategoriaID int64         `json:"subcategoriaId" validate:"required"`
	Posicion       int           `json:"posicion"`
	Sucursales     []int64       `json:"sucursales,omitempty"`
	Tamanos        []ProductSize `json:"tamaños,omitempty"`
}

func (p Producto) EntityID() int64 { return p.ID }

func (p Producto) WithPosicion(pos int) Producto {
	p.Posicion = pos
	return p
}

type Tamano struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre" validate:"notblank"`
	Descripcion string  `json:"descripcion,omitempty"`
	Posicion    int     `json:"posicion"`
	Productos   []int64 `json:"productos,omitempty"`
	Sucursales  []int64 `json:"sucursales,omitempty"`
}

func (t Tamano) EntityID() int64 { return t.ID }

func (t Tamano) WithPosicion(p int) Tamano {
	t.Posicion = p
	return t
}

// TipoModificador groups modifiers. EsUnico marks an exclusive choice.
type TipoModificador struct {
	ID       int64  `json:"id"`
	Nombre   string `json:"nombre" validate:"notblank"`
	EsUnico  bool   `json:"esUnico"`
	Posicion int    `json:"posicion"`
}

func (t TipoModificador) EntityID() int64 { return t.ID }

func (t TipoModificador) WithPosicion(p int) TipoModificador {
	t.Posicion = p
	return t
}

type Modificador struct {
	ID               int64            `json:"id"`
	Nombre           string           `json:"nombre" validate:"notblank"`
	Precio           Money            `json:"precio" validate:"gte=0"`
	Posicion         int              `json:"posicion"`
	SubcategoriasIDs []int64          `json:"subcategoriasIds,omitempty" validate:"required,min=1"`
	TipoModificador  *TipoModificador `json:"tipoModificador,omitempty" validate:"-"`
	Sucursales       []int64          `json:"sucursales,omitempty"`
}

func (m Modificador) EntityID() int64 { return m.ID }

func (m Modificador) WithPosicion(p int) Modificador {
	m.Posicion = p
	return m
}

// TypeID is the modifier group used to constrain reordering. Zero means ungrouped.
func (m Modificador) TypeID() int64 {
	if m.TipoModificador == nil {
		return 0
	}
	return m.TipoModificador.ID
}

type Mesa struct {
	ID         int64 `json:"id"`
	Numero     ID    `json:"numero" validate:"notblank,ne=0"`
	SucursalID int64 `json:"sucursalId,omitempty"`
	Posicion   int   `json:"posicion"`
}

func (m Mesa) EntityID() int64 { return m.ID }

func (m Mesa) WithPosicion(p int) Mesa {
	m.Posicion = p
	return m
}

type Descuento struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	Regla       string `json:"regla,omitempty"`
	Monto       Money  `json:"monto"`
	Activo      bool   `json:"activo"`
	Prioridad   int    `json:"prioridad,omitempty"`
}

func (d Descuento) EntityID() int64 { return d.ID }

func (d Descuento) WithPosicion(p int) Descuento {
	d.Prioridad = p
	return d
}
