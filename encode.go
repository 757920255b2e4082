package tagxml

import (
	"bytes"
	"reflect"
	"strings"
)

// unsafeValueChars would either break tokenization or be stripped on read.
const unsafeValueChars = "<>\n\t\r"

type encoded struct {
	class   Class
	records int
	data    []byte
}

// Encode renders instances as a document. All instances must be of the same
// registered struct type, given either as values or pointers.
func (c *Codec) Encode(instances ...any) ([]byte, error) {
	out, err := c.encode(instances)
	if err != nil {
		return nil, err
	}
	return out.data, nil
}

func (c *Codec) encode(instances []any) (encoded, error) {
	values, err := structValues(instances)
	if err != nil {
		return encoded{}, err
	}

	class, err := c.registry.Describe(values[0].Type())
	if err != nil {
		return encoded{}, err
	}
	if !class.ExportEligible() {
		return encoded{}, NewNotSerializableError(class.Type.String())
	}

	var buf bytes.Buffer
	for _, v := range values {
		if err := writeRecord(&buf, class, v); err != nil {
			return encoded{}, err
		}
	}
	return encoded{class: class, records: len(values), data: buf.Bytes()}, nil
}

// structValues dereferences every instance and checks they share one struct type.
func structValues(instances []any) ([]reflect.Value, error) {
	if len(instances) == 0 {
		return nil, NewEmptyCollectionError()
	}

	values := make([]reflect.Value, len(instances))
	for i, inst := range instances {
		if inst == nil {
			return nil, NewNilInstanceError(i)
		}
		v := reflect.ValueOf(inst)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, NewNilInstanceError(i)
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil, NewNotStructError(i, v.Type().String())
		}
		if i > 0 && v.Type() != values[0].Type() {
			return nil, NewHeterogeneousError(i, values[0].Type().String(), v.Type().String())
		}
		values[i] = v
	}
	return values, nil
}

func writeRecord(buf *bytes.Buffer, class Class, v reflect.Value) error {
	buf.WriteString("<" + class.Name + ">\n")
	for _, f := range class.Fields {
		text, err := f.Format(v)
		if err != nil {
			return err
		}
		if f.Type == String && strings.ContainsAny(text, unsafeValueChars) {
			return NewUnsafeValueError(class.Name, f.SourceName)
		}
		buf.WriteString("\t<" + f.ExportName + " " + TypeAttribute + "=\"" + f.Type.String() + "\">")
		buf.WriteString(text)
		buf.WriteString("</" + f.ExportName + ">\n")
	}
	buf.WriteString("</" + class.Name + ">\n")
	return nil
}
