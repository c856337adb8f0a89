package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/titipin/api/internal/orders/domain"
	"github.com/titipin/api/internal/orders/ports"
)

// Repository provides an in-memory store useful for local development and
// tests. A single mutex guards the map; compare-and-swap runs entirely under
// it, so exactly one caller wins per version number.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

// Create stores a new order instance.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = cloned(order)
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copy := cloned(order)
	return &copy, nil
}

// List returns orders respecting the provided filter. Pagination is 1-based.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.OwnerID != nil && order.OwnerID != *filter.OwnerID {
			continue
		}
		result = append(result, cloned(order))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	start := (page - 1) * pageSize
	if start >= len(result) {
		return []domain.Order{}, nil
	}

	end := start + pageSize
	if end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// CompareAndSwap applies mutate if the stored version matches. On a version
// mismatch nothing is written and *ports.ConflictError is returned.
func (r *Repository) CompareAndSwap(_ context.Context, id string, expectedVersion int64, mutate ports.Mutation) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}

	if order.Version != expectedVersion {
		return nil, &ports.ConflictError{
			OrderID:         id,
			ExpectedVersion: expectedVersion,
			ActualVersion:   order.Version,
		}
	}

	updated, err := mutate(cloned(order))
	if err != nil {
		return nil, err
	}

	r.orders[id] = cloned(updated)
	copy := cloned(updated)
	return &copy, nil
}

// cloned deep-copies the order so callers never alias stored state.
func cloned(o domain.Order) domain.Order {
	copy := o
	if o.CounterpartyID != nil {
		id := *o.CounterpartyID
		copy.CounterpartyID = &id
	}
	return copy
}
