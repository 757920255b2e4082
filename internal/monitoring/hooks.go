package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Metadata keys understood by the hooks in this package.
const (
	KeyClass   = "class"
	KeyKey     = "key"
	KeyRecords = "records"
	KeyBytes   = "bytes"
	KeyDigest  = "digest"

	// KeyErrorKind classifies a failure; it is set before OnError is called.
	KeyErrorKind = "error_kind"
)

// ObservabilityHook defines hooks for monitoring document operations
type ObservabilityHook interface {
	// Called before an operation starts
	OnProcessStart(ctx context.Context, operation string, metadata map[string]any)

	// Called after an operation completes (success or failure)
	OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any)

	// Called when errors occur
	OnError(ctx context.Context, operation string, err error, metadata map[string]any)
}

// NoOpObservabilityHook is a no-op implementation of ObservabilityHook
type NoOpObservabilityHook struct{}

func (n *NoOpObservabilityHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]any) {
}
func (n *NoOpObservabilityHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any) {
}
func (n *NoOpObservabilityHook) OnError(ctx context.Context, operation string, err error, metadata map[string]any) {
}

// LoggingObservabilityHook logs all operations
type LoggingObservabilityHook struct {
	logger *zap.Logger
}

// NewLoggingObservabilityHook creates a new logging observability hook
func NewLoggingObservabilityHook(logger *zap.Logger) *LoggingObservabilityHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingObservabilityHook{
		logger: logger,
	}
}

func (l *LoggingObservabilityHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]any) {
	l.logger.Debug("operation started", append(fields(metadata), zap.String("operation", operation))...)
}

func (l *LoggingObservabilityHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any) {
	fs := append(fields(metadata), zap.String("operation", operation), zap.Duration("duration", duration))
	if err != nil {
		l.logger.Warn("operation failed", append(fs, zap.Error(err))...)
		return
	}
	l.logger.Info("operation completed", fs...)
}

func (l *LoggingObservabilityHook) OnError(ctx context.Context, operation string, err error, metadata map[string]any) {
	l.logger.Error("operation error", append(fields(metadata), zap.String("operation", operation), zap.Error(err))...)
}

func fields(metadata map[string]any) []zap.Field {
	fs := make([]zap.Field, 0, len(metadata)+3)
	for k, v := range metadata {
		fs = append(fs, zap.Any(k, v))
	}
	return fs
}

// MetricsObservabilityHook records operations into a MetricsCollector
type MetricsObservabilityHook struct {
	collector MetricsCollector
}

// NewMetricsObservabilityHook creates a new metrics observability hook
func NewMetricsObservabilityHook(collector MetricsCollector) *MetricsObservabilityHook {
	if collector == nil {
		collector = &NoOpMetricsCollector{}
	}
	return &MetricsObservabilityHook{
		collector: collector,
	}
}

func (m *MetricsObservabilityHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]any) {
	m.collector.IncrementCounter(MetricStarted, map[string]string{"operation": operation})
}

func (m *MetricsObservabilityHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any) {
	tags := map[string]string{"operation": operation, "status": "success"}
	if err != nil {
		tags["status"] = "error"
	}
	m.collector.IncrementCounter(MetricCompleted, tags)
	m.collector.RecordTiming(MetricDuration, duration, map[string]string{"operation": operation})

	if err != nil {
		return
	}
	if records, ok := metadata[KeyRecords].(int); ok {
		m.collector.IncrementCounterBy(MetricRecords, int64(records), map[string]string{"operation": operation})
	}
	if size, ok := metadata[KeyBytes].(int); ok {
		m.collector.RecordValue(MetricDocumentBytes, float64(size), map[string]string{"operation": operation})
	}
}

func (m *MetricsObservabilityHook) OnError(ctx context.Context, operation string, err error, metadata map[string]any) {
	kind, ok := metadata[KeyErrorKind].(string)
	if !ok {
		kind = fmt.Sprintf("%T", err)
	}
	tags := map[string]string{
		"operation": operation,
		"kind":      kind,
	}
	m.collector.IncrementCounter(MetricErrors, tags)
}

// CompositeObservabilityHook combines multiple hooks
type CompositeObservabilityHook struct {
	hooks []ObservabilityHook
}

// NewCompositeObservabilityHook creates a new composite hook
func NewCompositeObservabilityHook(hooks ...ObservabilityHook) *CompositeObservabilityHook {
	return &CompositeObservabilityHook{
		hooks: hooks,
	}
}

func (c *CompositeObservabilityHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]any) {
	for _, hook := range c.hooks {
		hook.OnProcessStart(ctx, operation, metadata)
	}
}

func (c *CompositeObservabilityHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any) {
	for _, hook := range c.hooks {
		hook.OnProcessComplete(ctx, operation, duration, err, metadata)
	}
}

func (c *CompositeObservabilityHook) OnError(ctx context.Context, operation string, err error, metadata map[string]any) {
	for _, hook := range c.hooks {
		hook.OnError(ctx, operation, err, metadata)
	}
}
