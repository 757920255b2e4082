package tagxml

import (
	"fmt"
	"reflect"
	"strings"
)

// Field describes one exported scalar field of a class.
type Field struct {
	SourceName string
	ExportName string
	Type       ScalarType

	index int
}

// Value returns the field's current value on the struct value obj.
func (f Field) Value(obj reflect.Value) reflect.Value {
	return obj.Field(f.index)
}

// Format renders the field's value on obj as entry text.
func (f Field) Format(obj reflect.Value) (string, error) {
	return formatValue(f.Value(obj))
}

// Assign parses raw and stores it into the field on the addressable struct value obj.
func (f Field) Assign(obj reflect.Value, raw string) error {
	fieldValue := obj.Field(f.index)
	if !fieldValue.CanSet() {
		return fmt.Errorf("%w: field '%s' cannot be set", ErrAccessDenied, f.SourceName)
	}
	return parseValue(raw, fieldValue)
}

// fieldTag is the parsed form of a `tagxml` struct tag.
type fieldTag struct {
	name     string
	declared ScalarType
}

// parseFieldTag splits a tag value into its export name and options.
func parseFieldTag(tag string) (fieldTag, error) {
	parts := strings.Split(tag, ",")
	ft := fieldTag{name: strings.TrimSpace(parts[0])}

	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		key, value, found := strings.Cut(opt, "=")
		if !found || strings.TrimSpace(key) != TagOptionType {
			return fieldTag{}, fmt.Errorf("unknown %s tag option '%s'", StructTag, opt)
		}
		scalar, err := ParseScalarType(value)
		if err != nil {
			return fieldTag{}, err
		}
		ft.declared = scalar
	}

	if strings.ContainsAny(ft.name, "<>/ \t\n\r\"=") {
		return fieldTag{}, fmt.Errorf("export name '%s' is not a valid tag name", ft.name)
	}
	return ft, nil
}
