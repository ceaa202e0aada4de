package repository

import (
	"context"
	"sync"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// MockTokenRepository is an in-memory TokenRepository for unit tests.
type MockTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]domain.PushToken
	order  []string

	FindByUsersErr error

	// RequestedUsers records the user ids passed to each FindByUsers call.
	RequestedUsers [][]string
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{tokens: make(map[string]domain.PushToken)}
}

func (m *MockTokenRepository) Upsert(_ context.Context, t domain.PushToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tokens[t.Token]; !exists {
		m.order = append(m.order, t.Token)
	}
	m.tokens[t.Token] = t
	return nil
}

func (m *MockTokenRepository) Delete(_ context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok || t.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.tokens, token)
	return nil
}

func (m *MockTokenRepository) FindByUsers(_ context.Context, userIDs []string) (map[string][]string, error) {
	m.mu.Lock()
	m.RequestedUsers = append(m.RequestedUsers, append([]string(nil), userIDs...))
	m.mu.Unlock()
	if m.FindByUsersErr != nil {
		return nil, m.FindByUsersErr
	}

	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string][]string)
	for _, tok := range m.order {
		t, ok := m.tokens[tok]
		if ok && wanted[t.UserID] {
			result[t.UserID] = append(result[t.UserID], t.Token)
		}
	}
	return result, nil
}
