package tagxml

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Factory returns a fresh, default-initialised pointer to a registered struct.
type Factory func() any

// RegisterOption customises a registration.
type RegisterOption func(*registration) error

// WithName overrides the record tag name, which defaults to the struct's type name.
func WithName(name string) RegisterOption {
	return func(r *registration) error {
		if err := validateClassName(name); err != nil {
			return err
		}
		r.name = name
		return nil
	}
}

// WithFactory sets the zero-argument constructor used when reading documents.
// The factory must return a new pointer on every call; decoding fails when it
// hands back an instance already filled for an earlier record.
func WithFactory(factory Factory) RegisterOption {
	return func(r *registration) error {
		if factory == nil {
			return fmt.Errorf("%w: factory cannot be nil", ErrInvalidInput)
		}
		r.factory = factory
		return nil
	}
}

type registration struct {
	name    string
	typ     reflect.Type
	factory Factory
}

// Registry maps record tag names to registered struct types. Registering a
// type is what marks it serializable; reading a document resolves its class
// here instead of scanning loaded types.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*registration
	byType map[reflect.Type]*registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*registration),
		byType: make(map[reflect.Type]*registration),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry used by the package level Register
// and by codecs created without an explicit registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds the type of sample to the default registry.
func Register(sample any, opts ...RegisterOption) error {
	return defaultRegistry.Register(sample, opts...)
}

// MustRegister is like Register but panics on error. It is meant for init functions.
func MustRegister(sample any, opts ...RegisterOption) {
	if err := defaultRegistry.Register(sample, opts...); err != nil {
		panic(err)
	}
}

// Register marks the struct type of sample (a struct or pointer to struct)
// as serializable. Registering the same type under the same name twice is a
// no-op; reusing a name or a type with a different pairing fails with
// ErrDuplicateClass.
func (r *Registry) Register(sample any, opts ...RegisterOption) error {
	if sample == nil {
		return fmt.Errorf("%w: cannot register a nil value", ErrInvalidInput)
	}
	t := indirectType(reflect.TypeOf(sample))
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: only struct types can be registered, got %s", ErrInvalidInput, t)
	}

	reg := &registration{
		name: t.Name(),
		typ:  t,
		factory: func() any {
			return reflect.New(t).Interface()
		},
	}
	for _, opt := range opts {
		if err := opt(reg); err != nil {
			return err
		}
	}
	if reg.name == "" {
		return fmt.Errorf("%w: anonymous struct %s needs an explicit name", ErrInvalidInput, t)
	}
	if err := validateClassName(reg.name); err != nil {
		return err
	}
	for _, d := range inspectFields(t) {
		if d.annotated && d.field.ExportName == reg.name {
			return fmt.Errorf("%w: field '%s' of %s is exported under the class name '%s'",
				ErrInvalidInput, d.name, t, reg.name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[reg.name]; ok {
		if existing.typ == t {
			return nil
		}
		return fmt.Errorf("%w: '%s' is already registered for %s", ErrDuplicateClass, reg.name, existing.typ)
	}
	if existing, ok := r.byType[t]; ok {
		return fmt.Errorf("%w: %s is already registered as '%s'", ErrDuplicateClass, t, existing.name)
	}

	r.byName[reg.name] = reg
	r.byType[t] = reg
	return nil
}

// Describe derives the class metadata of t, a struct type or pointer to one.
// Unregistered types are described with Serializable set to false.
func (r *Registry) Describe(t reflect.Type) (Class, error) {
	t = indirectType(t)
	if t == nil || t.Kind() != reflect.Struct {
		return Class{}, fmt.Errorf("%w: %v is not a struct type", ErrInvalidInput, t)
	}

	class := Class{Name: t.Name(), Type: t}
	r.mu.RLock()
	reg, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		class.Name = reg.name
		class.Serializable = true
	}

	class.declared = inspectFields(t)
	markClassNameClash(class.declared, class.Name)
	class.Fields = exportable(class.declared)
	return class, nil
}

// Lookup resolves a record tag name to its registered class.
func (r *Registry) Lookup(name string) (Class, error) {
	r.mu.RLock()
	reg, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return Class{}, NewClassNotFoundError(name)
	}
	return r.Describe(reg.typ)
}

// IsExportEligible reports whether instances of t may be written.
func (r *Registry) IsExportEligible(t reflect.Type) bool {
	class, err := r.Describe(t)
	return err == nil && class.ExportEligible()
}

// IsImportEligible reports whether instances of t can be rebuilt from a
// document: t is registered, its factory yields a fresh *T and every
// declared field is annotated, exported and scalar.
func (r *Registry) IsImportEligible(t reflect.Type) bool {
	class, err := r.Describe(t)
	if err != nil || class.ValidateImport() != nil {
		return false
	}
	_, err = r.construct(class)
	return err == nil
}

// Names returns the registered class names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// construct calls the class factory and checks it produced a usable *T.
// The returned value is the addressable struct it points to.
func (r *Registry) construct(class Class) (reflect.Value, error) {
	r.mu.RLock()
	reg, ok := r.byType[class.Type]
	r.mu.RUnlock()
	if !ok {
		return reflect.Value{}, NewClassNotFoundError(class.Name)
	}

	obj := reg.factory()
	if obj == nil {
		return reflect.Value{}, NewNoConstructorError(class.Name, "factory returned nil")
	}
	v := reflect.ValueOf(obj)
	if v.Type() != reflect.PointerTo(class.Type) {
		return reflect.Value{}, NewNoConstructorError(class.Name,
			fmt.Sprintf("factory returned %s, expected *%s", v.Type(), class.Type))
	}
	if v.IsNil() {
		return reflect.Value{}, NewNoConstructorError(class.Name, "factory returned a nil pointer")
	}
	return v.Elem(), nil
}

// validateClassName rejects names that could not round trip as a record tag.
func validateClassName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: class name cannot be empty", ErrInvalidInput)
	}
	if strings.HasPrefix(name, "/") || strings.ContainsAny(name, "<> \t\n\r\"=") {
		return fmt.Errorf("%w: class name '%s' is not a valid tag name", ErrInvalidInput, name)
	}
	return nil
}
