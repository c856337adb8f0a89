package domain

import (
	"errors"
	"strings"
	"time"
)

// OrderStatus captures the lifecycle of a posted errand order in the system.
type OrderStatus string

const (
	StatusDraft        OrderStatus = "draft"
	StatusActive       OrderStatus = "active"
	StatusInDiscussion OrderStatus = "in_discussion"
	StatusAccepted     OrderStatus = "accepted"
	StatusShipped      OrderStatus = "shipped"
	StatusCompleted    OrderStatus = "completed"
	StatusCancelled    OrderStatus = "cancelled"
)

// IsValid reports whether the value is a known lifecycle status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusInDiscussion, StatusAccepted,
		StatusShipped, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentStatus tracks the payment sub-state independently of the order
// lifecycle. It is updated by payment callbacks and only gates transitions.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentSuccess  PaymentStatus = "success"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValid reports whether the value is a known payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentSuccess, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

// Actor identifies which party of an order requests a transition.
type Actor string

const (
	ActorOwner        Actor = "owner"
	ActorCounterparty Actor = "counterparty"
)

// Order represents a posted shopping request or travel offer moving through
// its lifecycle. Status is only ever mutated through Transition.
type Order struct {
	ID              string        `json:"id"`
	OwnerID         string        `json:"owner_id"`
	CounterpartyID  *string       `json:"counterparty_id,omitempty"`
	Title           string        `json:"title"`
	AmountCents     int64         `json:"amount_cents"`
	Status          OrderStatus   `json:"status"`
	PaymentRequired bool          `json:"payment_required"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Version         int64         `json:"version"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Validate ensures the order adheres to business constraints.
func (o Order) Validate() error {
	if strings.TrimSpace(o.OwnerID) == "" {
		return errors.New("owner_id is required")
	}
	if strings.TrimSpace(o.Title) == "" {
		return errors.New("title is required")
	}
	if o.AmountCents <= 0 {
		return errors.New("amount_cents must be positive")
	}
	return nil
}

// IsTerminal indicates whether the order can no longer change status.
func (o Order) IsTerminal() bool {
	switch o.Status {
	case StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Engaged reports whether a counterparty is attached to the order.
func (o Order) Engaged() bool {
	return o.CounterpartyID != nil
}

// ActorOf resolves which role the given user plays on this order. The second
// return value is false when the user is neither party.
func (o Order) ActorOf(userID string) (Actor, bool) {
	if userID == o.OwnerID {
		return ActorOwner, true
	}
	if o.CounterpartyID != nil && userID == *o.CounterpartyID {
		return ActorCounterparty, true
	}
	return "", false
}
