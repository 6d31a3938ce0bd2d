// Package validation holds the checks the admin forms run before anything is
// sent to the backend. Rules live in the validate tags of the catalog models.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

const tagLowestSize = "lowestsize"

// FieldErrors maps a form field to the message shown under it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	msgs := make([]string, 0, len(f))
	for field, msg := range f {
		msgs = append(msgs, field+": "+msg)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// OrNil returns nil when there are no field errors.
func (f FieldErrors) OrNil() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// messages is keyed by the failing namespace, struct name plus json field.
var messages = map[string]string{
	"Producto.nombre":              "El nombre del producto es requerido",
	"Producto.precio":              "El precio debe ser mayor a 0",
	"Producto.subcategoriaId":      "Debe seleccionar una subcategoría",
	"Producto.imagenUrl":           "La URL de la imagen no es válida",
	"Modificador.nombre":           "El nombre del modificador es requerido",
	"Modificador.precio":           "El precio debe ser mayor o igual a 0",
	"Modificador.subcategoriasIds": "Debe seleccionar al menos una subcategoría",
	"TipoModificador.nombre":       "El nombre del tipo de modificador es requerido",
	"Tamano.nombre":                "El nombre del tamaño es requerido",
	"Categoria.nombre":             "El nombre de la categoría es requerido",
	"Subcategoria.nombre":          "El nombre de la subcategoría es requerido",
	"Subcategoria.categoriaId":     "Debe seleccionar una categoría",
	"Mesa.numero":                  "El número de mesa es requerido",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Money compares as a number so gt and gte apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(productPrice, models.Producto{})
	return v
}

// productPrice requires the product price to equal its cheapest size once
// there is more than one priced size.
func productPrice(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.Producto)
	if len(p.Tamanos) < 2 {
		return
	}
	lowest := p.Tamanos[0].Precio
	for _, s := range p.Tamanos[1:] {
		lowest = decimal.Min(lowest, s.Precio)
	}
	if !p.Precio.Equal(lowest) {
		sl.ReportError(p.Precio, "precio", "Precio", tagLowestSize, lowest.String())
	}
}

func check(s interface{}) FieldErrors {
	errs := FieldErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(validate.Struct(s), &verrs) {
		return errs
	}
	for _, fe := range verrs {
		if _, taken := errs[fe.Field()]; taken && fe.Tag() != tagLowestSize {
			continue
		}
		errs[fe.Field()] = message(fe)
	}
	return errs
}

func message(fe validator.FieldError) string {
	if fe.Tag() == tagLowestSize {
		return "El precio del producto debe ser igual al menor precio de los tamaños ($" + fe.Param() + ")"
	}
	if msg, ok := messages[fe.Namespace()]; ok {
		return msg
	}
	return "El campo " + fe.Field() + " no es válido"
}

// Product strips sizes without a positive price and validates what is left.
// The returned product is what should be submitted.
func Product(p models.Producto) (models.Producto, FieldErrors) {
	sizes := make([]models.ProductSize, 0, len(p.Tamanos))
	for _, s := range p.Tamanos {
		if s.Precio.IsPositive() {
			sizes = append(sizes, s)
		}
	}
	p.Tamanos = sizes
	return p, check(p)
}

func Modifier(m models.Modificador) FieldErrors { return check(m) }

func ModifierType(t models.TipoModificador) FieldErrors { return check(t) }

func Size(t models.Tamano) FieldErrors { return check(t) }

func Category(c models.Categoria) FieldErrors { return check(c) }

func Subcategory(s models.Subcategoria) FieldErrors { return check(s) }

func Table(m models.Mesa) FieldErrors { return check(m) }
