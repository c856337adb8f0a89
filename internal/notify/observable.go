package notify

import (
	"context"
	"time"

	chatdomain "github.com/titipin/api/internal/chat/domain"
	chatports "github.com/titipin/api/internal/chat/ports"
	ordersdomain "github.com/titipin/api/internal/orders/domain"
	ordersports "github.com/titipin/api/internal/orders/ports"
	"github.com/titipin/api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Dispatcher is the union of the per-context dispatch ports, implemented by
// every concrete dispatcher in this package.
type Dispatcher interface {
	ordersports.LifecycleDispatcher
	chatports.MessageDispatcher
}

type ObservableDispatcher struct {
	dispatcher Dispatcher
	metrics    *Metrics
}

func NewObservableDispatcher(dispatcher Dispatcher, metrics *Metrics) *ObservableDispatcher {
	return &ObservableDispatcher{
		dispatcher: dispatcher,
		metrics:    metrics,
	}
}

func (d *ObservableDispatcher) DispatchLifecycle(ctx context.Context, event ordersdomain.LifecycleEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "Dispatcher.DispatchLifecycle")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", event.OrderID),
		attribute.String("event.type", "order.transition"),
		attribute.String("order.from_status", string(event.From)),
		attribute.String("order.status", string(event.To)),
	)

	start := time.Now()
	err := d.dispatcher.DispatchLifecycle(ctx, event)
	duration := time.Since(start).Seconds()

	d.metrics.RecordDispatch(ctx, "order.transition", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (d *ObservableDispatcher) DispatchMessageSent(ctx context.Context, event chatdomain.MessageSentEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "Dispatcher.DispatchMessageSent")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("chat.id", event.ChatID),
		attribute.String("event.type", "message.sent"),
	)

	start := time.Now()
	err := d.dispatcher.DispatchMessageSent(ctx, event)
	duration := time.Since(start).Seconds()

	d.metrics.RecordDispatch(ctx, "message.sent", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
