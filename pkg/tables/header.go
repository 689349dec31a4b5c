package tables

import (
	"reflect"

	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/meta"
)

// ColumnHeader describes a column. Two headers denote the same column when
// their names are equal.
type ColumnHeader struct {
	Name string
	Type reflect.Type
	Meta *meta.Meta
}

// HeaderOption configures a ColumnHeader
type HeaderOption func(*ColumnHeader)

// WithHeaderMeta attaches a copy of m to the header
func WithHeaderMeta(m *meta.Meta) HeaderOption {
	return func(h *ColumnHeader) {
		h.Meta = m.Clone()
	}
}

// Header declares a column named name holding values of type T
func Header[T any](name string, opts ...HeaderOption) ColumnHeader {
	h := ColumnHeader{
		Name: name,
		Type: reflect.TypeFor[T](),
		Meta: meta.New(),
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// TypeName returns the name of the header's value type
func (h ColumnHeader) TypeName() string {
	if h.Type == nil {
		return "unknown"
	}
	return h.Type.String()
}

// Equal reports whether both headers carry the same name, type and metadata
func (h ColumnHeader) Equal(o ColumnHeader) bool {
	return h.Name == o.Name && h.Type == o.Type && h.Meta.Equal(o.Meta)
}

func (h ColumnHeader) validate() error {
	if h.Name == "" {
		return errors.New(errors.ErrorTypeValidation, "column name must not be empty")
	}
	return nil
}

// checkType rejects headers whose declared type cannot hold values of T
func checkType[T any](h ColumnHeader) error {
	want := reflect.TypeFor[T]()
	if h.Type != nil && !want.AssignableTo(h.Type) {
		return errors.Newf(errors.ErrorTypeValidation, "column %q declares %s but holds %s", h.Name, h.Type, want).
			WithDetail("column", h.Name)
	}
	return nil
}
