package repository

import (
	"context"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// ItemRepository defines all persistence operations for inventory items.
// Every user-facing method is scoped by user id; a row owned by someone else
// is reported as domain.ErrNotFound.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, userID, id string) (*domain.Item, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	UpdateQuantity(ctx context.Context, userID, id string, quantity float64) error
	Delete(ctx context.Context, userID, id string) error

	// DeleteExpired removes every item whose expiry date is before the given day.
	DeleteExpired(ctx context.Context, before domain.Date) (int64, error)

	// FindExpiring returns all items, across users, expiring within [from, to].
	FindExpiring(ctx context.Context, from, to domain.Date) ([]domain.ExpiringItem, error)
}

// TokenRepository is the push token registry.
type TokenRepository interface {
	Upsert(ctx context.Context, t domain.PushToken) error
	Delete(ctx context.Context, userID, token string) error

	// FindByUsers returns the token set of each given user. Users without
	// tokens are absent from the map.
	FindByUsers(ctx context.Context, userIDs []string) (map[string][]string, error)
}
