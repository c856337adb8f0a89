package domain

import (
	"errors"
	"time"
)

// LifecycleEvent describes a committed status transition. It is handed to the
// notification dispatcher after the write commits.
type LifecycleEvent struct {
	OrderID    string      `json:"order_id"`
	From       OrderStatus `json:"from"`
	To         OrderStatus `json:"to"`
	ActorID    string      `json:"actor_id"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// IllegalTransitionError reports a transition request that is not permitted
// for the acting party in the order's current status.
type IllegalTransitionError struct {
	From   OrderStatus
	To     OrderStatus
	Actor  Actor
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	actor := string(e.Actor)
	if actor == "" {
		actor = "stranger"
	}
	msg := "illegal transition from " + string(e.From) + " to " + string(e.To) + " by " + actor
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

type transitionKey struct {
	from OrderStatus
	to   OrderStatus
}

// transitionRule is one row of the lifecycle table: who may move an order
// between two statuses, under what precondition, and with what effect on the
// counterparty binding.
type transitionRule struct {
	actor        Actor
	recruits     bool // any non-owner may act, becoming the counterparty
	precondition func(Order) error
	effect       func(*Order, string)
}

func bindCounterparty(o *Order, actorID string) {
	id := actorID
	o.CounterpartyID = &id
}

func releaseCounterparty(o *Order, _ string) {
	o.CounterpartyID = nil
}

func requirePaymentSettled(o Order) error {
	if o.PaymentRequired && o.PaymentStatus != PaymentSuccess {
		return errors.New("payment not settled")
	}
	return nil
}

func requireDisengaged(o Order) error {
	if o.Engaged() {
		return errors.New("counterparty engaged")
	}
	return nil
}

func requireEngaged(o Order) error {
	if !o.Engaged() {
		return errors.New("no counterparty selected")
	}
	return nil
}

// transitions is the single source of truth for the order lifecycle. Every
// route that mutates status goes through this table; there are no per-route
// status checks anywhere else.
var transitions = map[transitionKey][]transitionRule{
	{StatusDraft, StatusActive}: {
		{actor: ActorOwner, precondition: Order.Validate},
	},
	{StatusActive, StatusInDiscussion}: {
		{actor: ActorCounterparty, recruits: true, effect: bindCounterparty},
	},
	{StatusInDiscussion, StatusAccepted}: {
		{actor: ActorOwner, precondition: requireEngaged},
	},
	{StatusInDiscussion, StatusActive}: {
		{actor: ActorOwner, effect: releaseCounterparty},
		{actor: ActorCounterparty, effect: releaseCounterparty},
	},
	{StatusAccepted, StatusShipped}: {
		{actor: ActorCounterparty, precondition: requirePaymentSettled},
	},
	{StatusAccepted, StatusActive}: {
		{actor: ActorCounterparty, effect: releaseCounterparty},
	},
	{StatusShipped, StatusActive}: {
		{actor: ActorCounterparty, effect: releaseCounterparty},
	},
	{StatusShipped, StatusCompleted}: {
		{actor: ActorOwner},
	},
	{StatusActive, StatusCancelled}: {
		{actor: ActorOwner, precondition: requireDisengaged},
	},
}

// Transition applies the lifecycle rule for (current status, to, actor) and
// returns the updated order together with the event describing the change.
// The receiver is never mutated; on any error the stored order must be left
// untouched by the caller.
func (o Order) Transition(to OrderStatus, actorID string, now time.Time) (Order, LifecycleEvent, error) {
	actor, known := o.ActorOf(actorID)

	rules, ok := transitions[transitionKey{o.Status, to}]
	if !ok {
		return Order{}, LifecycleEvent{}, &IllegalTransitionError{From: o.Status, To: to, Actor: actor}
	}

	var rule *transitionRule
	for i := range rules {
		if known && rules[i].actor == actor {
			rule = &rules[i]
			break
		}
		if !known && rules[i].recruits {
			actor = ActorCounterparty
			rule = &rules[i]
			break
		}
	}
	if rule == nil {
		return Order{}, LifecycleEvent{}, &IllegalTransitionError{From: o.Status, To: to, Actor: actor}
	}

	if rule.precondition != nil {
		if err := rule.precondition(o); err != nil {
			return Order{}, LifecycleEvent{}, &IllegalTransitionError{From: o.Status, To: to, Actor: actor, Reason: err.Error()}
		}
	}

	updated := o
	updated.Status = to
	if rule.effect != nil {
		rule.effect(&updated, actorID)
	}
	updated.Version++
	updated.UpdatedAt = now

	event := LifecycleEvent{
		OrderID:    o.ID,
		From:       o.Status,
		To:         to,
		ActorID:    actorID,
		OccurredAt: now,
	}

	return updated, event, nil
}

// LegalTargets lists the statuses the given user may move the order to.
// Used by the API layer to render available actions.
func (o Order) LegalTargets(userID string) []OrderStatus {
	actor, known := o.ActorOf(userID)

	var targets []OrderStatus
	for key, rules := range transitions {
		if key.from != o.Status {
			continue
		}
		for _, rule := range rules {
			matches := known && rule.actor == actor
			if !known && rule.recruits {
				matches = true
			}
			if !matches {
				continue
			}
			if rule.precondition != nil && rule.precondition(o) != nil {
				continue
			}
			targets = append(targets, key.to)
			break
		}
	}
	return targets
}
