package tagxml

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ScalarType is the declared type of an exported field, written in the
// entry's type attribute.
type ScalarType string

const (
	Int     ScalarType = "int"
	Float   ScalarType = "float"
	Boolean ScalarType = "boolean"
	String  ScalarType = "String"
)

// IsValid checks if the scalar type is supported
func (s ScalarType) IsValid() bool {
	switch s {
	case Int, Float, Boolean, String:
		return true
	default:
		return false
	}
}

// String returns the attribute spelling of the scalar type
func (s ScalarType) String() string {
	return string(s)
}

// ParseScalarType parses a type attribute or tag option. "string" is accepted
// as an alias of String; every other spelling must match exactly.
func ParseScalarType(s string) (ScalarType, error) {
	scalar := ScalarType(strings.TrimSpace(s))
	if scalar == "string" {
		return String, nil
	}
	if !scalar.IsValid() {
		return "", fmt.Errorf("unsupported scalar type '%s': must be one of [%s, %s, %s, %s]",
			s, Int, Float, Boolean, String)
	}
	return scalar, nil
}

// AllScalarTypes returns all supported scalar types
func AllScalarTypes() []ScalarType {
	return []ScalarType{Int, Float, Boolean, String}
}

// scalarForKind maps a Go kind onto the scalar it is exported as.
func scalarForKind(kind reflect.Kind) (ScalarType, bool) {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int, true
	case reflect.Float32, reflect.Float64:
		return Float, true
	case reflect.Bool:
		return Boolean, true
	case reflect.String:
		return String, true
	default:
		return "", false
	}
}

// formatValue renders a scalar field value as entry text.
func formatValue(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	default:
		return "", fmt.Errorf("unsupported type for serialization: %v", v.Type())
	}
}

// parseValue parses entry text into the settable field value v. Numeric
// parsing honours the field's bit size so overflow is reported, not truncated.
func parseValue(raw string, v reflect.Value) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to parse int: %w", err)
		}
		v.SetInt(val)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to parse uint: %w", err)
		}
		v.SetUint(val)
		return nil
	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(raw, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("failed to parse float: %w", err)
		}
		v.SetFloat(val)
		return nil
	case reflect.Bool:
		val, err := parseBoolean(raw)
		if err != nil {
			return err
		}
		v.SetBool(val)
		return nil
	default:
		return fmt.Errorf("unsupported type for deserialization: %v", v.Type())
	}
}

// parseBoolean only accepts the two spellings the encoder produces.
func parseBoolean(raw string) (bool, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("failed to parse bool: %q is neither true nor false", raw)
	}
}

// checkRaw verifies that raw is valid text for scalar without a target field.
func checkRaw(scalar ScalarType, raw string) error {
	var err error
	switch scalar {
	case Int:
		if _, err = strconv.ParseInt(raw, 10, 64); err != nil {
			_, err = strconv.ParseUint(raw, 10, 64)
		}
	case Float:
		_, err = strconv.ParseFloat(raw, 64)
	case Boolean:
		_, err = parseBoolean(raw)
	case String:
	default:
		err = fmt.Errorf("unsupported scalar type '%s'", scalar)
	}
	return err
}
