package service

import (
	"context"
	"time"

	"github.com/smarthousehold/inventory-service/internal/analytics"
	"github.com/smarthousehold/inventory-service/internal/domain"
)

// AnalyticsService builds spending reports from the user's inventory.
type AnalyticsService struct {
	inventory *InventoryService
}

func NewAnalyticsService(inventory *InventoryService) *AnalyticsService {
	return &AnalyticsService{inventory: inventory}
}

func (s *AnalyticsService) Report(ctx context.Context, userID string, period analytics.Period, budget float64) (*analytics.Report, error) {
	if budget < 0 {
		return nil, domain.ErrInvalidBudget
	}
	items, err := s.inventory.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return analytics.Compute(items, period, budget, s.now(), s.inventory.loc), nil
}

func (s *AnalyticsService) now() time.Time { return s.inventory.now() }
