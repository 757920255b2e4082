package monitoring

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every Prometheus metric name.
const Namespace = "tagxml"

// PrometheusMetricsCollector exposes collected metrics through a Prometheus
// registry. Vectors are created on first use, with the sorted tag keys of
// that first call as label names; later calls with other keys are dropped.
type PrometheusMetricsCollector struct {
	Registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetricsCollector creates a collector with its own registry.
func NewPrometheusMetricsCollector() *PrometheusMetricsCollector {
	return &PrometheusMetricsCollector{
		Registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (p *PrometheusMetricsCollector) IncrementCounter(name string, tags map[string]string) {
	p.IncrementCounterBy(name, 1, tags)
}

func (p *PrometheusMetricsCollector) IncrementCounterBy(name string, value int64, tags map[string]string) {
	if vec := p.counter(name, tags); vec != nil {
		if c, err := vec.GetMetricWith(prometheus.Labels(tags)); err == nil {
			c.Add(float64(value))
		}
	}
}

func (p *PrometheusMetricsCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) {
	if vec := p.histogram(name, tags, prometheus.DefBuckets); vec != nil {
		if h, err := vec.GetMetricWith(prometheus.Labels(tags)); err == nil {
			h.Observe(duration.Seconds())
		}
	}
}

func (p *PrometheusMetricsCollector) RecordValue(name string, value float64, tags map[string]string) {
	if vec := p.histogram(name, tags, prometheus.ExponentialBuckets(64, 4, 10)); vec != nil {
		if h, err := vec.GetMetricWith(prometheus.Labels(tags)); err == nil {
			h.Observe(value)
		}
	}
}

func (p *PrometheusMetricsCollector) counter(name string, tags map[string]string) *prometheus.CounterVec {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, found := p.counters[name]
	if !found {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      name,
			Help:      fmt.Sprintf("tagxml counter %s", name),
		}, sortedKeys(tags))
		if err := p.Registry.Register(vec); err != nil {
			return nil
		}
		p.counters[name] = vec
	}
	return vec
}

func (p *PrometheusMetricsCollector) histogram(name string, tags map[string]string, buckets []float64) *prometheus.HistogramVec {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, found := p.histograms[name]
	if !found {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      name,
			Help:      fmt.Sprintf("tagxml histogram %s", name),
			Buckets:   buckets,
		}, sortedKeys(tags))
		if err := p.Registry.Register(vec); err != nil {
			return nil
		}
		p.histograms[name] = vec
	}
	return vec
}
