package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// MockItemRepository is a hand-written, in-memory implementation of
// ItemRepository used in unit tests.
type MockItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
	order []string

	// Optional error overrides, set in tests to simulate failure paths.
	CreateErr        error
	FindExpiringErr  error
	DeleteExpiredErr error

	FindExpiringCalls int
}

func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{items: make(map[string]*domain.Item)}
}

func (m *MockItemRepository) Create(_ context.Context, it *domain.Item) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *it
	if _, exists := m.items[it.ID]; !exists {
		m.order = append(m.order, it.ID)
	}
	m.items[it.ID] = &clone
	return nil
}

func (m *MockItemRepository) GetByID(_ context.Context, userID, id string) (*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return nil, domain.ErrNotFound
	}
	clone := *it
	return &clone, nil
}

func (m *MockItemRepository) ListByUser(_ context.Context, userID string) ([]*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Item
	for _, id := range m.order {
		it, ok := m.items[id]
		if ok && it.UserID == userID {
			clone := *it
			result = append(result, &clone)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ExpiryDate.Before(result[j].ExpiryDate)
	})
	return result, nil
}

func (m *MockItemRepository) Update(_ context.Context, it *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[it.ID]
	if !ok || existing.UserID != it.UserID {
		return domain.ErrNotFound
	}
	clone := *it
	m.items[it.ID] = &clone
	return nil
}

func (m *MockItemRepository) UpdateQuantity(_ context.Context, userID, id string, quantity float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return domain.ErrNotFound
	}
	it.Quantity = quantity
	return nil
}

func (m *MockItemRepository) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockItemRepository) DeleteExpired(_ context.Context, before domain.Date) (int64, error) {
	if m.DeleteExpiredErr != nil {
		return 0, m.DeleteExpiredErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, it := range m.items {
		if it.ExpiryDate.Before(before) {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

// FindExpiring returns matches in insertion order, which stands in for the
// database's row order.
func (m *MockItemRepository) FindExpiring(_ context.Context, from, to domain.Date) ([]domain.ExpiringItem, error) {
	m.mu.Lock()
	m.FindExpiringCalls++
	m.mu.Unlock()
	if m.FindExpiringErr != nil {
		return nil, m.FindExpiringErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []domain.ExpiringItem
	for _, id := range m.order {
		it, ok := m.items[id]
		if !ok || it.ExpiryDate.Before(from) || to.Before(it.ExpiryDate) {
			continue
		}
		result = append(result, domain.ExpiringItem{
			UserID:     it.UserID,
			Name:       it.Name,
			ExpiryDate: it.ExpiryDate,
		})
	}
	return result, nil
}

// Count returns the number of stored items.
func (m *MockItemRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
