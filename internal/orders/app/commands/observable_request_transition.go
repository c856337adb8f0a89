package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/titipin/api/internal/orders/metrics"
	"github.com/titipin/api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableTransitionHandler struct {
	handler TransitionHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableTransitionHandler(handler TransitionHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableTransitionHandler {
	return &ObservableTransitionHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableTransitionHandler) Handle(ctx context.Context, cmd RequestTransitionCommand) (*TransitionResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "RequestTransitionCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordTransitionDuration(ctx, duration)
		o.metrics.RecordTransition(ctx, string(cmd.To), success)
	}()

	o.logger.InfoContext(ctx, "requesting order transition",
		"order_id", cmd.OrderID,
		"to", cmd.To,
		"actor_id", cmd.ActorID,
		"expected_version", cmd.ExpectedVersion,
	)

	result, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "order transition failed",
			"error", err,
			"order_id", cmd.OrderID,
			"to", cmd.To,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", result.Order.ID),
		attribute.String("order.from_status", string(result.Event.From)),
		attribute.String("order.status", string(result.Order.Status)),
		attribute.Int64("order.version", result.Order.Version),
	)

	o.logger.InfoContext(ctx, "order transition committed",
		"order_id", result.Order.ID,
		"from", result.Event.From,
		"to", result.Event.To,
		"version", result.Order.Version,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return result, nil
}
