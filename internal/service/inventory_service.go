package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/repository"
)

// InventoryService owns the item rules: validation, ownership scoping,
// quantity adjustment, and the expired-item sweep.
type InventoryService struct {
	repo   repository.ItemRepository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

func NewInventoryService(repo repository.ItemRepository, loc *time.Location, logger *zap.Logger) *InventoryService {
	if loc == nil {
		loc = time.UTC
	}
	return &InventoryService{repo: repo, loc: loc, logger: logger, now: time.Now}
}

func (s *InventoryService) today() domain.Date {
	return domain.DateOf(s.now(), s.loc)
}

func (s *InventoryService) Create(ctx context.Context, userID string, req domain.ItemRequest) (*domain.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	it := &domain.Item{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       strings.TrimSpace(req.Name),
		Category:   strings.TrimSpace(req.Category),
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		Price:      req.Price,
		ExpiryDate: *req.ExpiryDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("persist item: %w", err)
	}
	return it, nil
}

func (s *InventoryService) Get(ctx context.Context, userID, id string) (*domain.Item, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns the user's unexpired items, most urgent first.
func (s *InventoryService) List(ctx context.Context, userID string) ([]domain.ListedItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	today := s.today()
	listed := make([]domain.ListedItem, 0, len(items))
	for _, it := range items {
		days := today.DaysUntil(it.ExpiryDate)
		if days < 0 {
			continue
		}
		listed = append(listed, domain.ListedItem{Item: *it, DaysLeft: days, Status: domain.StatusFor(days)})
	}
	sort.SliceStable(listed, func(i, j int) bool { return listed[i].DaysLeft < listed[j].DaysLeft })
	return listed, nil
}

// ListAll returns every stored item of the user, expired or not.
func (s *InventoryService) ListAll(ctx context.Context, userID string) ([]*domain.Item, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *InventoryService) Update(ctx context.Context, userID, id string, req domain.ItemRequest) (*domain.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	it, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	it.Name = strings.TrimSpace(req.Name)
	it.Category = strings.TrimSpace(req.Category)
	it.Quantity = req.Quantity
	it.Unit = req.Unit
	it.Price = req.Price
	it.ExpiryDate = *req.ExpiryDate
	it.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// AdjustQuantity adds delta to the item's quantity. When the result drops to
// zero or below the item is deleted and (nil, true, nil) is returned.
func (s *InventoryService) AdjustQuantity(ctx context.Context, userID, id string, delta float64) (*domain.Item, bool, error) {
	if delta == 0 {
		return nil, false, domain.ErrInvalidQuantity
	}

	it, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, false, err
	}

	qty := it.Quantity + delta
	if qty <= 0 {
		if err := s.repo.Delete(ctx, userID, id); err != nil {
			return nil, false, err
		}
		s.logger.Info("item used up", zap.String("item_id", id), zap.String("user_id", userID))
		return nil, true, nil
	}

	if err := s.repo.UpdateQuantity(ctx, userID, id, qty); err != nil {
		return nil, false, err
	}
	it.Quantity = qty
	return it, false, nil
}

func (s *InventoryService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// PurgeExpired deletes every item whose expiry date is before today.
func (s *InventoryService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.today())
	if err != nil {
		return 0, fmt.Errorf("delete expired items: %w", err)
	}
	return n, nil
}

// TokenService maintains the push token registry.
type TokenService struct {
	repo   repository.TokenRepository
	logger *zap.Logger
}

func NewTokenService(repo repository.TokenRepository, logger *zap.Logger) *TokenService {
	return &TokenService{repo: repo, logger: logger}
}

// Register upserts the token for userID. Re-registering a token moves it
// to the new owner.
func (s *TokenService) Register(ctx context.Context, userID string, req domain.RegisterTokenRequest) (*domain.PushToken, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t := domain.PushToken{
		UserID:    userID,
		Token:     strings.TrimSpace(req.Token),
		Platform:  req.Platform,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, t); err != nil {
		return nil, fmt.Errorf("persist push token: %w", err)
	}
	return &t, nil
}

func (s *TokenService) Remove(ctx context.Context, userID, token string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrInvalidToken
	}
	if err := s.repo.Delete(ctx, userID, token); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete push token: %w", err)
	}
	return nil
}
