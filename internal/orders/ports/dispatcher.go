package ports

import (
	"context"

	"github.com/titipin/api/internal/orders/domain"
)

// LifecycleDispatcher fans lifecycle events out to notification channels.
// Dispatch runs strictly after the transition commits and is best-effort:
// a dispatch failure never rolls back the committed transition.
type LifecycleDispatcher interface {
	DispatchLifecycle(ctx context.Context, event domain.LifecycleEvent) error
}
