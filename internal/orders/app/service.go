package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/titipin/api/internal/orders/app/commands"
	"github.com/titipin/api/internal/orders/app/queries"
	"github.com/titipin/api/internal/orders/domain"
	"github.com/titipin/api/internal/orders/metrics"
	"github.com/titipin/api/internal/orders/ports"
)

// Service bundles the order lifecycle use cases exposed to the API layer.
type Service struct {
	repo              ports.OrderRepository
	dispatcher        ports.LifecycleDispatcher
	clock             func() time.Time
	logger            *slog.Logger
	metrics           *metrics.Metrics
	createHandler     commands.CreateHandler
	transitionHandler commands.TransitionHandler
	getOrderHandler   *queries.GetOrderQueryHandler
}

// NewService wires required dependencies. The clock is injectable so tests
// can pin timestamps; nil means time.Now.
func NewService(
	repo ports.OrderRepository,
	dispatcher ports.LifecycleDispatcher,
	logger *slog.Logger,
	m *metrics.Metrics,
	clock func() time.Time,
) *Service {
	if clock == nil {
		clock = time.Now
	}

	transitionHandler := commands.NewRequestTransitionCommandHandler(repo, dispatcher, clock, logger)

	return &Service{
		repo:              repo,
		dispatcher:        dispatcher,
		clock:             clock,
		logger:            logger,
		metrics:           m,
		createHandler:     commands.NewCreateOrderCommandHandler(repo, clock),
		transitionHandler: commands.NewObservableTransitionHandler(transitionHandler, logger, m),
		getOrderHandler:   queries.NewGetOrderQueryHandler(repo),
	}
}

// CreateOrderInput captures payload for creating a draft order.
type CreateOrderInput struct {
	OwnerID         string `json:"owner_id"`
	Title           string `json:"title"`
	AmountCents     int64  `json:"amount_cents"`
	PaymentRequired bool   `json:"payment_required"`
}

// CreateOrder creates a draft order owned by the requesting user.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	cmd := commands.CreateOrderCommand{
		OwnerID:         input.OwnerID,
		Title:           input.Title,
		AmountCents:     input.AmountCents,
		PaymentRequired: input.PaymentRequired,
	}

	order, err := s.createHandler.Handle(ctx, cmd)
	s.metrics.RecordOrderCreated(ctx, err == nil)
	return order, err
}

// TransitionInput captures payload for a lifecycle transition request.
type TransitionInput struct {
	OrderID         string             `json:"-"`
	ExpectedVersion int64              `json:"expected_version"`
	To              domain.OrderStatus `json:"to"`
	ActorID         string             `json:"actor_id"`
}

// RequestTransition applies a lifecycle transition and returns the committed
// order plus the emitted event.
func (s *Service) RequestTransition(ctx context.Context, input TransitionInput) (*commands.TransitionResult, error) {
	cmd := commands.RequestTransitionCommand{
		OrderID:         input.OrderID,
		ExpectedVersion: input.ExpectedVersion,
		To:              input.To,
		ActorID:         input.ActorID,
	}
	return s.transitionHandler.Handle(ctx, cmd)
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListOrders returns orders using a filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	return s.repo.List(ctx, filter)
}

// MarkPayment records the outcome reported by the payment gateway callback.
// It is decoupled from the lifecycle: only the payment sub-state changes.
// The stored version still advances, so a racing transition resolves to one
// winner at the compare-and-swap.
func (s *Service) MarkPayment(ctx context.Context, orderID string, status domain.PaymentStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, errors.New("payment status is not valid")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.CompareAndSwap(ctx, orderID, order.Version, func(o domain.Order) (domain.Order, error) {
		o.PaymentStatus = status
		o.Version++
		o.UpdatedAt = s.clock().UTC()
		return o, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment status recorded",
		"order_id", orderID,
		"payment_status", status,
		"version", updated.Version,
	)

	return updated, nil
}
