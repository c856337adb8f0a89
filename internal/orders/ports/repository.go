package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/titipin/api/internal/orders/domain"
)

// Mutation transforms an order into its next state. It must be pure: no I/O,
// no reliance on anything but the argument.
type Mutation func(domain.Order) (domain.Order, error)

// OrderRepository exposes persistence operations required by the application
// layer. CompareAndSwap is the only way to mutate a stored order.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)

	// CompareAndSwap applies mutate atomically if the stored version equals
	// expectedVersion, otherwise it fails with *ConflictError and leaves the
	// stored order untouched.
	CompareAndSwap(ctx context.Context, id string, expectedVersion int64, mutate Mutation) (*domain.Order, error)
}

// ListFilter narrows list queries by status, party and pagination.
type ListFilter struct {
	Status   *domain.OrderStatus
	OwnerID  *string
	Page     int
	PageSize int
}

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
)

// ConflictError reports an optimistic-concurrency conflict: the caller's
// expected version no longer matches the stored one. Recoverable by
// reload-and-retry at the caller's discretion; never retried internally.
type ConflictError struct {
	OrderID         string
	ExpectedVersion int64
	ActualVersion   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("order %s modified concurrently: expected version %d, stored version %d",
		e.OrderID, e.ExpectedVersion, e.ActualVersion)
}
