package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/titipin/api/internal/orders/app/queries"
	"github.com/titipin/api/internal/orders/domain"
	"github.com/titipin/api/internal/orders/ports"
)

type mockRepository struct {
	getFn func(ctx context.Context, id string) (*domain.Order, error)
}

func (m *mockRepository) Create(context.Context, domain.Order) error { return nil }

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockRepository) List(context.Context, ports.ListFilter) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockRepository) CompareAndSwap(context.Context, string, int64, ports.Mutation) (*domain.Order, error) {
	return nil, ports.ErrNotFound
}

func TestGetOrder(t *testing.T) {
	t.Run("returns the order", func(t *testing.T) {
		want := &domain.Order{ID: "order-1", OwnerID: "shopper-1", Status: domain.StatusActive}
		repo := &mockRepository{getFn: func(_ context.Context, id string) (*domain.Order, error) {
			if id != "order-1" {
				t.Errorf("queried id = %s, want order-1", id)
			}
			return want, nil
		}}
		handler := queries.NewGetOrderQueryHandler(repo)

		got, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "order-1"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("propagates not found", func(t *testing.T) {
		handler := queries.NewGetOrderQueryHandler(&mockRepository{})

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "missing"})
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("rejects a blank id", func(t *testing.T) {
		called := false
		repo := &mockRepository{getFn: func(context.Context, string) (*domain.Order, error) {
			called = true
			return nil, nil
		}}
		handler := queries.NewGetOrderQueryHandler(repo)

		if _, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: "  "}); err == nil {
			t.Error("expected validation error")
		}
		if called {
			t.Error("repository touched for invalid query")
		}
	})
}
