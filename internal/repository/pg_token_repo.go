package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

type pgTokenRepository struct {
	pool *pgxpool.Pool
}

// NewPgTokenRepository returns a TokenRepository backed by PostgreSQL.
func NewPgTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &pgTokenRepository{pool: pool}
}

// Upsert registers a token. A token that moves to another account (shared
// device, re-login) is reassigned rather than duplicated.
func (r *pgTokenRepository) Upsert(ctx context.Context, t domain.PushToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO push_tokens (token, user_id, platform, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    platform = EXCLUDED.platform,
		    updated_at = EXCLUDED.updated_at`,
		t.Token, t.UserID, t.Platform, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert push token: %w", err)
	}
	return nil
}

func (r *pgTokenRepository) Delete(ctx context.Context, userID, token string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM push_tokens WHERE token = $1 AND user_id = $2`, token, userID)
	if err != nil {
		return fmt.Errorf("delete push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgTokenRepository) FindByUsers(ctx context.Context, userIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT user_id, token FROM push_tokens
		WHERE user_id = ANY($1)
		ORDER BY user_id, updated_at DESC`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("find push tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, token string
		if err := rows.Scan(&userID, &token); err != nil {
			return nil, err
		}
		result[userID] = append(result[userID], token)
	}
	return result, rows.Err()
}
