package tagxml

import (
	"fmt"

	"go.uber.org/zap"
)

// Option configures a Serializer.
type Option func(s *Serializer) error

// WithRegistry resolves classes in registry instead of the default registry.
func WithRegistry(registry *Registry) Option {
	return func(s *Serializer) error {
		if registry == nil {
			return fmt.Errorf("%w: registry cannot be nil", ErrInvalidInput)
		}
		s.codec = NewCodec(registry)
		return nil
	}
}

// WithStore persists documents in store instead of the working directory.
func WithStore(store Store) Option {
	return func(s *Serializer) error {
		if store == nil {
			return fmt.Errorf("%w: store cannot be nil", ErrInvalidInput)
		}
		s.store = store
		return nil
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Serializer) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidInput)
		}
		s.logger = logger
		return nil
	}
}

// WithObservabilityHook reports every read and write to hook.
func WithObservabilityHook(hook ObservabilityHook) Option {
	return func(s *Serializer) error {
		if hook == nil {
			return fmt.Errorf("%w: observability hook cannot be nil", ErrInvalidInput)
		}
		s.hook = hook
		return nil
	}
}
