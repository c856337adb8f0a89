package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/titipin/api/internal/orders/domain"
	"github.com/titipin/api/internal/orders/ports"
)

type CreateOrderCommand struct {
	OwnerID         string
	Title           string
	AmountCents     int64
	PaymentRequired bool
}

func (c CreateOrderCommand) Validate() error {
	if strings.TrimSpace(c.OwnerID) == "" {
		return errors.New("owner_id is required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title is required")
	}
	if c.AmountCents <= 0 {
		return errors.New("amount_cents must be positive")
	}
	return nil
}

type CreateHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type CreateOrderCommandHandler struct {
	repo  ports.OrderRepository
	clock func() time.Time
}

func NewCreateOrderCommandHandler(repo ports.OrderRepository, clock func() time.Time) *CreateOrderCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	return &CreateOrderCommandHandler{repo: repo, clock: clock}
}

// Handle creates an order as a draft. Drafts carry no counterparty and
// version 0; publishing happens through the draft->active transition.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.clock().UTC()
	order := domain.Order{
		ID:              uuid.NewString(),
		OwnerID:         cmd.OwnerID,
		Title:           cmd.Title,
		AmountCents:     cmd.AmountCents,
		Status:          domain.StatusDraft,
		PaymentRequired: cmd.PaymentRequired,
		PaymentStatus:   domain.PaymentPending,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	return &order, nil
}
