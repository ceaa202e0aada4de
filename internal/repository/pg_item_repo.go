package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

const itemColumns = `id, user_id, name, category, quantity, unit, price, expiry_date, created_at, updated_at`

type pgItemRepository struct {
	pool *pgxpool.Pool
}

// NewPgItemRepository returns an ItemRepository backed by PostgreSQL.
func NewPgItemRepository(pool *pgxpool.Pool) ItemRepository {
	return &pgItemRepository{pool: pool}
}

func (r *pgItemRepository) Create(ctx context.Context, it *domain.Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (`+itemColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		it.ID, it.UserID, it.Name, it.Category, it.Quantity, it.Unit, it.Price,
		it.ExpiryDate.Time, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *pgItemRepository) GetByID(ctx context.Context, userID, id string) (*domain.Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM products WHERE id = $1 AND user_id = $2`, id, userID)

	it, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return it, err
}

func (r *pgItemRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM products WHERE user_id = $1
		ORDER BY expiry_date ASC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *pgItemRepository) Update(ctx context.Context, it *domain.Item) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, category = $2, quantity = $3, unit = $4, price = $5,
		    expiry_date = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9`,
		it.Name, it.Category, it.Quantity, it.Unit, it.Price,
		it.ExpiryDate.Time, it.UpdatedAt, it.ID, it.UserID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgItemRepository) UpdateQuantity(ctx context.Context, userID, id string, quantity float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET quantity = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4`,
		quantity, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgItemRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgItemRepository) DeleteExpired(ctx context.Context, before domain.Date) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM products WHERE expiry_date < $1`, before.Time)
	if err != nil {
		return 0, fmt.Errorf("delete expired items: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgItemRepository) FindExpiring(ctx context.Context, from, to domain.Date) ([]domain.ExpiringItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, name, expiry_date
		FROM products
		WHERE expiry_date >= $1 AND expiry_date <= $2
		ORDER BY user_id, created_at`, from.Time, to.Time)
	if err != nil {
		return nil, fmt.Errorf("find expiring items: %w", err)
	}
	defer rows.Close()

	var result []domain.ExpiringItem
	for rows.Next() {
		var (
			e      domain.ExpiringItem
			expiry time.Time
		)
		if err := rows.Scan(&e.UserID, &e.Name, &expiry); err != nil {
			return nil, err
		}
		e.ExpiryDate = domain.NewDate(expiry)
		result = append(result, e)
	}
	return result, rows.Err()
}

// ---- helpers ----

// scanItem reads a single item row from any pgx row type.
func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		it     domain.Item
		expiry time.Time
	)
	err := row.Scan(
		&it.ID, &it.UserID, &it.Name, &it.Category, &it.Quantity,
		&it.Unit, &it.Price, &expiry, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.ExpiryDate = domain.NewDate(expiry)
	return &it, nil
}
