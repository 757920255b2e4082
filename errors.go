package tagxml

import (
	"errors"
	"fmt"
)

var (
	// Caller errors, raised before any I/O takes place
	ErrInvalidInput   = errors.New("invalid input")
	ErrDuplicateClass = fmt.Errorf("%w: duplicate class name", ErrInvalidInput)

	// Lookup errors
	ErrNotFound      = errors.New("document not found")
	ErrClassNotFound = errors.New("class not found")

	// Document errors
	ErrMalformedInput = errors.New("malformed document")

	// Access errors
	ErrAccessDenied = errors.New("field access denied")
	ErrIO           = errors.New("i/o failure")
)

func NewEmptyCollectionError() error {
	return fmt.Errorf("%w: at least one instance is required", ErrInvalidInput)
}

func NewNilInstanceError(index int) error {
	return fmt.Errorf("%w: instance at index %d is nil", ErrInvalidInput, index)
}

func NewNotStructError(index int, typeName string) error {
	return fmt.Errorf("%w: instance at index %d must be a struct or a pointer to a struct, got %s",
		ErrInvalidInput, index, typeName)
}

func NewHeterogeneousError(index int, expected, actual string) error {
	return fmt.Errorf("%w: instances are not of the same class: index %d is %s, expected %s",
		ErrInvalidInput, index, actual, expected)
}

func NewNotSerializableError(typeName string) error {
	return fmt.Errorf("%w: type %s is not registered as serializable", ErrInvalidInput, typeName)
}

func NewNoConstructorError(className string, details string) error {
	return fmt.Errorf("%w: no suitable constructor found for class '%s': %s", ErrInvalidInput, className, details)
}

func NewUnsafeValueError(className, fieldName string) error {
	return fmt.Errorf("%w: value of field '%s' in class '%s' contains markup or line control characters",
		ErrInvalidInput, fieldName, className)
}

func NewMissingExtensionError(name string) error {
	return fmt.Errorf("%w: '%s' is not an %s file", ErrNotFound, name, Extension)
}

func NewClassNotFoundError(className string) error {
	return fmt.Errorf("%w: no registered class named '%s'", ErrClassNotFound, className)
}

func NewMalformedError(position int, details string) error {
	return fmt.Errorf("%w: token %d: %s", ErrMalformedInput, position, details)
}

func NewUnknownFieldError(position int, className, fieldName string) error {
	return fmt.Errorf("%w: token %d: field '%s' does not exist in class '%s'",
		ErrMalformedInput, position, fieldName, className)
}

func NewValueParseError(position int, fieldName string, scalar ScalarType, raw string) error {
	return fmt.Errorf("%w: token %d: value %q of field '%s' is not a valid %s",
		ErrMalformedInput, position, raw, fieldName, scalar)
}

// IsInputError reports whether the call was rejected before touching any document.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrAccessDenied)
}

// IsNotFoundError reports whether the document or its class could not be located.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrClassNotFound)
}

// IsFormatError reports whether the document itself is at fault.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// ErrorKind names the sentinel err wraps, for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrClassNotFound):
		return "class_not_found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}
