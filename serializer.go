package tagxml

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hengadev/tagxml/internal/digest"
	"github.com/hengadev/tagxml/internal/monitoring"
)

// ObservabilityHook receives start, completion and error events for every
// Write and Read.
type ObservabilityHook = monitoring.ObservabilityHook

// Operation names reported to hooks.
const (
	OperationWrite = "Write"
	OperationRead  = "Read"
)

// Serializer writes and reads documents through a Store.
type Serializer struct {
	codec  *Codec
	store  Store
	logger *zap.Logger
	hook   ObservabilityHook
}

// WriteResult describes a document persisted by Write.
type WriteResult struct {
	Key     string
	Class   string
	Records int
	Bytes   int
	// Digest fingerprints the document content.
	Digest string
}

// New creates a Serializer. Without options it uses the default registry,
// stores documents in the working directory and does not log.
func New(opts ...Option) (*Serializer, error) {
	s := &Serializer{
		codec:  NewCodec(nil),
		store:  NewDirStore(DefaultDir),
		logger: zap.NewNop(),
		hook:   &monitoring.NoOpObservabilityHook{},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("apply serializer option: %w", err)
		}
	}
	return s, nil
}

// Codec returns the codec used to encode and decode documents.
func (s *Serializer) Codec() *Codec {
	return s.codec
}

// Write encodes instances and stores the document as target + ".xml",
// replacing any previous document. Validation happens before any I/O, so a
// rejected call leaves the store untouched.
func (s *Serializer) Write(ctx context.Context, target string, instances ...any) (WriteResult, error) {
	start := time.Now()
	key := target + Extension
	metadata := map[string]any{monitoring.KeyKey: key}
	s.hook.OnProcessStart(ctx, OperationWrite, metadata)
	s.logStart(OperationWrite, key)

	result, err := s.write(ctx, target, key, instances, metadata)
	s.finish(ctx, OperationWrite, start, err, metadata)
	if err != nil {
		return WriteResult{}, err
	}
	return result, nil
}

func (s *Serializer) write(ctx context.Context, target, key string, instances []any, metadata map[string]any) (WriteResult, error) {
	if strings.TrimSpace(target) == "" {
		return WriteResult{}, fmt.Errorf("%w: target name cannot be empty", ErrInvalidInput)
	}

	out, err := s.codec.encode(instances)
	if err != nil {
		return WriteResult{}, err
	}
	result := WriteResult{
		Key:     key,
		Class:   out.class.Name,
		Records: out.records,
		Bytes:   len(out.data),
		Digest:  digest.Sum(out.data),
	}
	metadata[monitoring.KeyClass] = result.Class
	metadata[monitoring.KeyRecords] = result.Records
	metadata[monitoring.KeyBytes] = result.Bytes
	metadata[monitoring.KeyDigest] = result.Digest

	if err := s.store.Put(ctx, key, out.data); err != nil {
		return WriteResult{}, fmt.Errorf("write document '%s': %w", key, err)
	}
	return result, nil
}

// Read loads the document stored under source, which must carry the ".xml"
// extension, and rebuilds its instances. Either every instance is returned
// or none is.
func (s *Serializer) Read(ctx context.Context, source string) ([]any, error) {
	start := time.Now()
	metadata := map[string]any{monitoring.KeyKey: source}
	s.hook.OnProcessStart(ctx, OperationRead, metadata)
	s.logStart(OperationRead, source)

	instances, err := s.read(ctx, source, metadata)
	s.finish(ctx, OperationRead, start, err, metadata)
	if err != nil {
		return nil, err
	}
	return instances, nil
}

func (s *Serializer) read(ctx context.Context, source string, metadata map[string]any) ([]any, error) {
	if !strings.HasSuffix(source, Extension) || len(source) == len(Extension) {
		return nil, NewMissingExtensionError(source)
	}

	data, err := s.store.Get(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("read document '%s': %w", source, err)
	}
	metadata[monitoring.KeyBytes] = len(data)

	out, err := s.codec.decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode document '%s': %w", source, err)
	}
	metadata[monitoring.KeyClass] = out.class.Name
	metadata[monitoring.KeyRecords] = len(out.instances)
	return out.instances, nil
}

// ReadAs reads source and returns its instances as *T.
func ReadAs[T any](ctx context.Context, s *Serializer, source string) ([]*T, error) {
	objs, err := s.Read(ctx, source)
	if err != nil {
		return nil, err
	}
	return castAll[T](objs)
}

func (s *Serializer) logStart(operation, key string) {
	s.logger.Debug("document operation started",
		zap.String("operation", operation),
		zap.String(monitoring.KeyKey, key))
}

func (s *Serializer) finish(ctx context.Context, operation string, start time.Time, err error, metadata map[string]any) {
	duration := time.Since(start)
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Any(monitoring.KeyKey, metadata[monitoring.KeyKey]),
		zap.Duration("duration", duration),
	}
	if class, ok := metadata[monitoring.KeyClass]; ok {
		fields = append(fields, zap.Any(monitoring.KeyClass, class))
	}
	if records, ok := metadata[monitoring.KeyRecords]; ok {
		fields = append(fields, zap.Any(monitoring.KeyRecords, records))
	}
	if size, ok := metadata[monitoring.KeyBytes]; ok {
		fields = append(fields, zap.Any(monitoring.KeyBytes, size))
	}
	if sum, ok := metadata[monitoring.KeyDigest]; ok {
		fields = append(fields, zap.Any(monitoring.KeyDigest, sum))
	}

	if err != nil {
		metadata[monitoring.KeyErrorKind] = ErrorKind(err)
		s.hook.OnError(ctx, operation, err, metadata)
		s.logger.Warn("document operation failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Info("document operation completed", fields...)
	}
	s.hook.OnProcessComplete(ctx, operation, duration, err, metadata)
}
