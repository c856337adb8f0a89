package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/titipin/api/internal/orders/adapters/memory"
	"github.com/titipin/api/internal/orders/domain"
	"github.com/titipin/api/internal/orders/ports"
)

func seedOrder(t *testing.T, repo *memory.Repository, id string, version int64) domain.Order {
	t.Helper()
	order := domain.Order{
		ID:          id,
		OwnerID:     "owner-1",
		Title:       "Pocky variety pack",
		AmountCents: 50000,
		Status:      domain.StatusActive,
		Version:     version,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func bumpVersion(o domain.Order) (domain.Order, error) {
	o.Version++
	o.UpdatedAt = time.Now().UTC()
	return o, nil
}

func TestGetByID(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	t.Run("returns stored order", func(t *testing.T) {
		seedOrder(t, repo, "order-1", 0)

		got, err := repo.GetByID(ctx, "order-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.ID != "order-1" {
			t.Errorf("ID = %s, want order-1", got.ID)
		}
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("returned order does not alias the store", func(t *testing.T) {
		seedOrder(t, repo, "order-2", 0)

		got, err := repo.GetByID(ctx, "order-2")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		got.Status = domain.StatusCancelled

		again, err := repo.GetByID(ctx, "order-2")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if again.Status != domain.StatusActive {
			t.Error("mutating a returned order leaked into the store")
		}
	})
}

func TestCompareAndSwap(t *testing.T) {
	ctx := context.Background()

	t.Run("applies mutation at the expected version", func(t *testing.T) {
		repo := memory.NewRepository()
		seedOrder(t, repo, "order-1", 3)

		updated, err := repo.CompareAndSwap(ctx, "order-1", 3, bumpVersion)
		if err != nil {
			t.Fatalf("CompareAndSwap failed: %v", err)
		}
		if updated.Version != 4 {
			t.Errorf("version = %d, want 4", updated.Version)
		}
	})

	t.Run("stale version fails with conflict and leaves the order unchanged", func(t *testing.T) {
		repo := memory.NewRepository()
		seedOrder(t, repo, "order-1", 3)

		_, err := repo.CompareAndSwap(ctx, "order-1", 1, bumpVersion)

		var conflict *ports.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if conflict.ExpectedVersion != 1 || conflict.ActualVersion != 3 {
			t.Errorf("conflict = %+v, want expected=1 actual=3", conflict)
		}

		stored, err := repo.GetByID(ctx, "order-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if stored.Version != 3 {
			t.Errorf("stored version = %d, want 3 (unchanged)", stored.Version)
		}
	})

	t.Run("mutation error leaves the order unchanged", func(t *testing.T) {
		repo := memory.NewRepository()
		seedOrder(t, repo, "order-1", 0)

		wantErr := errors.New("mutation refused")
		_, err := repo.CompareAndSwap(ctx, "order-1", 0, func(domain.Order) (domain.Order, error) {
			return domain.Order{}, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("err = %v, want mutation error", err)
		}

		stored, err := repo.GetByID(ctx, "order-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if stored.Version != 0 {
			t.Errorf("stored version = %d, want 0 (unchanged)", stored.Version)
		}
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		repo := memory.NewRepository()
		if _, err := repo.CompareAndSwap(ctx, "missing", 0, bumpVersion); !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("exactly one of two racers wins per version", func(t *testing.T) {
		repo := memory.NewRepository()
		seedOrder(t, repo, "order-1", 0)

		const racers = 2
		var wg sync.WaitGroup
		results := make([]error, racers)

		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = repo.CompareAndSwap(ctx, "order-1", 0, bumpVersion)
			}(i)
		}
		wg.Wait()

		var wins, conflicts int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			default:
				var conflict *ports.ConflictError
				if !errors.As(err, &conflict) {
					t.Fatalf("unexpected error: %v", err)
				}
				conflicts++
			}
		}

		if wins != 1 || conflicts != 1 {
			t.Errorf("wins = %d, conflicts = %d; want exactly one of each", wins, conflicts)
		}

		stored, err := repo.GetByID(ctx, "order-1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if stored.Version != 1 {
			t.Errorf("stored version = %d, want 1", stored.Version)
		}
	})
}

func TestList(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		seedOrder(t, repo, id, 0)
	}
	cancelled := seedOrder(t, repo, "d", 0)
	if _, err := repo.CompareAndSwap(ctx, cancelled.ID, 0, func(o domain.Order) (domain.Order, error) {
		o.Status = domain.StatusCancelled
		o.Version++
		return o, nil
	}); err != nil {
		t.Fatalf("cancel seed order: %v", err)
	}

	t.Run("filters by status", func(t *testing.T) {
		status := domain.StatusCancelled
		orders, err := repo.List(ctx, ports.ListFilter{Status: &status})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(orders) != 1 || orders[0].ID != "d" {
			t.Errorf("orders = %v, want just d", orders)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		orders, err := repo.List(ctx, ports.ListFilter{Page: 1, PageSize: 2})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(orders) != 2 {
			t.Errorf("page size = %d, want 2", len(orders))
		}
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		orders, err := repo.List(ctx, ports.ListFilter{Page: 10, PageSize: 20})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(orders) != 0 {
			t.Errorf("orders = %v, want empty", orders)
		}
	})
}
