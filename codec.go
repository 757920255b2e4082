package tagxml

// Codec converts between registered structs and documents in memory.
// It holds no per-call state and may be shared between goroutines.
type Codec struct {
	registry *Registry
}

// NewCodec creates a codec resolving classes in registry, or in the default
// registry when registry is nil.
func NewCodec(registry *Registry) *Codec {
	if registry == nil {
		registry = defaultRegistry
	}
	return &Codec{registry: registry}
}

// Registry returns the registry the codec resolves classes in.
func (c *Codec) Registry() *Registry {
	return c.registry
}
