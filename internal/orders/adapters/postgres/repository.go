package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/titipin/api/internal/orders/domain"
	"github.com/titipin/api/internal/orders/ports"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, owner_id, counterparty_id, title, amount_cents, status,
		payment_required, payment_status, version, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.OwnerID,
		order.CounterpartyID,
		order.Title,
		order.AmountCents,
		order.Status,
		order.PaymentRequired,
		order.PaymentStatus,
		order.Version,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return order, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR owner_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, query, statusFilter, filter.OwnerID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// CompareAndSwap locks the row, verifies the version, applies mutate and
// writes the result in one transaction. The version check is the correctness
// mechanism: two racing callers with the same expected version resolve to
// exactly one winner.
func (r *Repository) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, mutate ports.Mutation) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order for update: %w", err)
	}

	if order.Version != expectedVersion {
		return nil, &ports.ConflictError{
			OrderID:         id,
			ExpectedVersion: expectedVersion,
			ActualVersion:   order.Version,
		}
	}

	updated, err := mutate(*order)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE orders
		SET counterparty_id = $1, status = $2, payment_status = $3,
		    version = $4, updated_at = $5
		WHERE id = $6 AND version = $7
	`

	tag, err := tx.Exec(ctx, update,
		updated.CounterpartyID,
		updated.Status,
		updated.PaymentStatus,
		updated.Version,
		updated.UpdatedAt,
		id,
		expectedVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &ports.ConflictError{
			OrderID:         id,
			ExpectedVersion: expectedVersion,
			ActualVersion:   updated.Version,
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.OwnerID,
		&order.CounterpartyID,
		&order.Title,
		&order.AmountCents,
		&order.Status,
		&order.PaymentRequired,
		&order.PaymentStatus,
		&order.Version,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
