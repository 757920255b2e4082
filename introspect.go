package tagxml

import (
	"fmt"
	"reflect"

	"github.com/hengadev/errsx"
)

// declaredField records what introspection learned about one struct field,
// exported or not.
type declaredField struct {
	name       string
	annotated  bool
	accessible bool
	problem    error
	field      Field
}

func (d declaredField) eligible() bool {
	return d.annotated && d.accessible && d.problem == nil
}

// Class is the metadata of a struct type, derived on demand.
type Class struct {
	// Name is the record tag written for every instance.
	Name string
	Type reflect.Type
	// Serializable reports whether the type carries the class-level
	// annotation, i.e. has been registered.
	Serializable bool
	// Fields are the exportable fields in declaration order.
	Fields []Field

	declared []declaredField
}

// ExportEligible reports whether instances of the class may be written.
func (c Class) ExportEligible() bool {
	return c.Serializable
}

// FieldIndex maps export names to fields.
func (c Class) FieldIndex() map[string]Field {
	index := make(map[string]Field, len(c.Fields))
	for _, f := range c.Fields {
		index[f.ExportName] = f
	}
	return index
}

// ValidateImport checks that every declared field is annotated, accessible
// and scalar, so a freshly constructed instance can be fully restored from a
// document. Partially annotated classes may be written but not read back.
func (c Class) ValidateImport() error {
	if !c.Serializable {
		return NewNotSerializableError(c.Type.String())
	}

	var errs errsx.Map
	sentinel := error(nil)
	for _, d := range c.declared {
		switch {
		case !d.annotated:
			errs.Set(d.name, fmt.Sprintf("field is not annotated with the %s tag", StructTag))
			sentinel = ErrMalformedInput
		case !d.accessible:
			errs.Set(d.name, "field is annotated but unexported")
			if sentinel == nil || sentinel == ErrInvalidInput {
				sentinel = ErrAccessDenied
			}
		case d.problem != nil:
			errs.Set(d.name, d.problem)
			if sentinel == nil {
				sentinel = ErrInvalidInput
			}
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return fmt.Errorf("%w: not all fields of class '%s' can be reconstructed: %w", sentinel, c.Name, errs.AsError())
}

// ExtractFields returns the exportable fields declared directly on t, in
// declaration order. Fields without the struct tag, unexported fields and
// fields of unsupported types are skipped without error. t may be a struct
// type or a pointer to one; anything else yields no fields.
func ExtractFields(t reflect.Type) []Field {
	t = indirectType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	declared := inspectFields(t)
	markClassNameClash(declared, t.Name())
	return exportable(declared)
}

func exportable(declared []declaredField) []Field {
	fields := make([]Field, 0, len(declared))
	for _, d := range declared {
		if d.eligible() {
			fields = append(fields, d.field)
		}
	}
	return fields
}

// inspectFields walks the fields of the struct type t. Embedded structs are
// treated as single declared fields and are not flattened.
func inspectFields(t reflect.Type) []declaredField {
	declared := make([]declaredField, 0, t.NumField())
	seen := make(map[string]string)
	for i := range t.NumField() {
		sf := t.Field(i)
		d := declaredField{name: sf.Name, accessible: sf.IsExported()}

		tag, ok := sf.Tag.Lookup(StructTag)
		if !ok || tag == tagSkip {
			declared = append(declared, d)
			continue
		}
		d.annotated = true

		ft, err := parseFieldTag(tag)
		if err != nil {
			d.problem = err
			declared = append(declared, d)
			continue
		}

		scalar, ok := scalarForKind(sf.Type.Kind())
		switch {
		case !ok:
			d.problem = fmt.Errorf("unsupported type %s: must be an integer, float, bool or string", sf.Type)
		case ft.declared != "" && ft.declared != scalar:
			d.problem = fmt.Errorf("declared type %s does not match field type %s", ft.declared, sf.Type)
		}

		exportName := ft.name
		if exportName == "" {
			exportName = sf.Name
		}
		if other, dup := seen[exportName]; dup && d.problem == nil {
			d.problem = fmt.Errorf("export name '%s' already used by field '%s'", exportName, other)
		} else if !dup {
			seen[exportName] = sf.Name
		}
		d.field = Field{
			SourceName: sf.Name,
			ExportName: exportName,
			Type:       scalar,
			index:      i,
		}
		declared = append(declared, d)
	}
	return declared
}

// markClassNameClash flags fields exported under the class name. An empty
// value for such a field tokenizes like the record's closing tag.
func markClassNameClash(declared []declaredField, className string) {
	for i := range declared {
		d := &declared[i]
		if d.annotated && d.problem == nil && d.field.ExportName == className {
			d.problem = fmt.Errorf("export name '%s' is the class name", className)
		}
	}
}

// indirectType strips pointer indirections.
func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
