package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	messagesSubmittedTotal metric.Int64Counter
	messagesRejectedTotal  metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.messagesSubmittedTotal, err = meter.Int64Counter(
		"chat_messages_submitted_total",
		metric.WithDescription("Total number of chat message submissions"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create chat_messages_submitted_total counter: %w", err)
	}

	m.messagesRejectedTotal, err = meter.Int64Counter(
		"chat_messages_rejected_total",
		metric.WithDescription("Total number of chat messages rejected by the contact-info filter"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create chat_messages_rejected_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordSubmission(ctx context.Context, accepted bool) {
	status := "accepted"
	if !accepted {
		status = "rejected"
	}
	m.messagesSubmittedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordRejection(ctx context.Context, category string) {
	m.messagesRejectedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
	))
}
