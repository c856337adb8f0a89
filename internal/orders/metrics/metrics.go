package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersCreatedTotal metric.Int64Counter
	transitionsTotal   metric.Int64Counter
	transitionDuration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersCreatedTotal, err = meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders created"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_created_total counter: %w", err)
	}

	m.transitionsTotal, err = meter.Int64Counter(
		"order_transitions_total",
		metric.WithDescription("Total number of requested order transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_transitions_total counter: %w", err)
	}

	m.transitionDuration, err = meter.Float64Histogram(
		"order_transition_duration_seconds",
		metric.WithDescription("Duration of order transition operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_transition_duration histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderCreated(ctx context.Context, success bool) {
	m.ordersCreatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", outcome(success)),
	))
}

func (m *Metrics) RecordTransition(ctx context.Context, to string, success bool) {
	m.transitionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("to", to),
		attribute.String("status", outcome(success)),
	))
}

func (m *Metrics) RecordTransitionDuration(ctx context.Context, durationSeconds float64) {
	m.transitionDuration.Record(ctx, durationSeconds)
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
