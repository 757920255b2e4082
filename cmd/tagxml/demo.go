package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"github.com/hengadev/tagxml"
	"github.com/hengadev/tagxml/internal/monitoring"
)

// Student is the record type written by the demo command.
type Student struct {
	FirstName string `tagxml:"firstName"`
	Surname   string `tagxml:"surname"`
	Age       int    `tagxml:"howOld"`
}

var (
	firstNames = []string{"Jane", "John", "Ada", "Alan", "Grace", "Linus", "Barbara", "Ken", "Margaret", "Dennis"}
	surnames   = []string{"Doe", "Smith", "Lovelace", "Turing", "Hopper", "Torvalds", "Liskov", "Thompson", "Hamilton", "Ritchie"}
)

// demoStudents returns count students with deterministic values.
func demoStudents(count int) []any {
	students := make([]any, count)
	for i := range count {
		students[i] = &Student{
			FirstName: firstNames[i%len(firstNames)],
			Surname:   surnames[(i*3)%len(surnames)],
			Age:       18 + (i*7)%50,
		}
	}
	return students
}

// demoResult summarises a demo round trip.
type demoResult struct {
	Write tagxml.WriteResult
	Read  int
}

// runDemo writes count students under name, reads them back and checks
// every instance survived unchanged.
func runDemo(ctx context.Context, s *tagxml.Serializer, name string, count int) (demoResult, error) {
	students := demoStudents(count)
	written, err := s.Write(ctx, name, students...)
	if err != nil {
		return demoResult{}, err
	}

	read, err := tagxml.ReadAs[Student](ctx, s, written.Key)
	if err != nil {
		return demoResult{}, err
	}
	if len(read) != len(students) {
		return demoResult{}, fmt.Errorf("read %d students, wrote %d", len(read), len(students))
	}
	for i, got := range read {
		want := students[i].(*Student)
		if *got != *want {
			return demoResult{}, fmt.Errorf("student %d changed in round trip: wrote %+v, read %+v", i, *want, *got)
		}
	}
	return demoResult{Write: written, Read: len(read)}, nil
}

func newDemoSerializer(store tagxml.Store, logger *zap.Logger, collector monitoring.MetricsCollector) (*tagxml.Serializer, error) {
	registry := tagxml.NewRegistry()
	if err := registry.Register(Student{}); err != nil {
		return nil, err
	}
	hook := monitoring.NewCompositeObservabilityHook(
		monitoring.NewLoggingObservabilityHook(logger),
		monitoring.NewMetricsObservabilityHook(collector),
	)
	return tagxml.New(
		tagxml.WithRegistry(registry),
		tagxml.WithStore(store),
		tagxml.WithLogger(logger),
		tagxml.WithObservabilityHook(hook),
	)
}

// writeMetrics prints the gathered metric families in a compact text form.
func writeMetrics(w io.Writer, families []*dto.MetricFamily) {
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", label.GetName(), label.GetValue()))
			}
			sort.Strings(labels)

			name := family.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s %g\n", name, metric.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}
