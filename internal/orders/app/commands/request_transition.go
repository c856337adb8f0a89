package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/titipin/api/internal/orders/domain"
	"github.com/titipin/api/internal/orders/ports"
)

type RequestTransitionCommand struct {
	OrderID         string
	ExpectedVersion int64
	To              domain.OrderStatus
	ActorID         string
}

func (c RequestTransitionCommand) Validate() error {
	if strings.TrimSpace(c.OrderID) == "" {
		return errors.New("order_id is required")
	}
	if strings.TrimSpace(c.ActorID) == "" {
		return errors.New("actor_id is required")
	}
	if !c.To.IsValid() {
		return errors.New("to is not a valid status")
	}
	if c.ExpectedVersion < 0 {
		return errors.New("expected_version must not be negative")
	}
	return nil
}

// TransitionResult carries the committed order and the event describing the
// change, for the caller to hand to the notification dispatcher.
type TransitionResult struct {
	Order *domain.Order
	Event domain.LifecycleEvent
}

type TransitionHandler interface {
	Handle(ctx context.Context, cmd RequestTransitionCommand) (*TransitionResult, error)
}

type RequestTransitionCommandHandler struct {
	repo       ports.OrderRepository
	dispatcher ports.LifecycleDispatcher
	clock      func() time.Time
	logger     *slog.Logger
}

func NewRequestTransitionCommandHandler(
	repo ports.OrderRepository,
	dispatcher ports.LifecycleDispatcher,
	clock func() time.Time,
	logger *slog.Logger,
) *RequestTransitionCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	return &RequestTransitionCommandHandler{
		repo:       repo,
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger,
	}
}

// Handle applies the requested lifecycle transition via a single
// compare-and-swap. The lifecycle check and the version check resolve
// together: a conflicting writer fails with *ports.ConflictError, an
// unauthorized or out-of-table request with *domain.IllegalTransitionError.
// Notification dispatch runs after the commit and is best-effort.
func (h *RequestTransitionCommandHandler) Handle(ctx context.Context, cmd RequestTransitionCommand) (*TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var event domain.LifecycleEvent
	updated, err := h.repo.CompareAndSwap(ctx, cmd.OrderID, cmd.ExpectedVersion, func(order domain.Order) (domain.Order, error) {
		next, ev, err := order.Transition(cmd.To, cmd.ActorID, h.clock().UTC())
		if err != nil {
			return domain.Order{}, err
		}
		event = ev
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	if err := h.dispatcher.DispatchLifecycle(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "lifecycle dispatch failed after commit",
			"order_id", event.OrderID,
			"from", event.From,
			"to", event.To,
			"error", err,
		)
	}

	return &TransitionResult{Order: updated, Event: event}, nil
}
