package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/analytics"
	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/repository"
	"github.com/smarthousehold/inventory-service/internal/service"
)

func newInventory() (*service.InventoryService, *repository.MockItemRepository) {
	repo := repository.NewMockItemRepository()
	return service.NewInventoryService(repo, time.UTC, zap.NewNop()), repo
}

func inDays(n int) *domain.Date {
	d := domain.DateOf(time.Now(), time.UTC).AddDays(n)
	return &d
}

func request(name string, qty float64, expiresIn int) domain.ItemRequest {
	return domain.ItemRequest{
		Name:       name,
		Category:   "Dairy",
		Quantity:   qty,
		Unit:       "pcs",
		Price:      10,
		ExpiryDate: inDays(expiresIn),
	}
}

func TestInventoryService_Create(t *testing.T) {
	svc, repo := newInventory()

	it, err := svc.Create(context.Background(), "alice", request("  Milk ", 2, 3))
	require.NoError(t, err)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, "Milk", it.Name)
	assert.Equal(t, "alice", it.UserID)
	assert.Equal(t, 1, repo.Count())
}

func TestInventoryService_Create_InvalidRequest(t *testing.T) {
	svc, repo := newInventory()

	_, err := svc.Create(context.Background(), "alice", request("Milk", 0, 3))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Zero(t, repo.Count())
}

func TestInventoryService_Create_RepoError(t *testing.T) {
	svc, repo := newInventory()
	repo.CreateErr = errors.New("disk full")

	_, err := svc.Create(context.Background(), "alice", request("Milk", 1, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestInventoryService_List_SortedWithStatus(t *testing.T) {
	svc, _ := newInventory()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", request("Rice", 1, 10))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", request("Milk", 1, 1))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", request("Cheese", 1, 4))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", request("Old", 1, -2))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", request("Eggs", 1, 0))
	require.NoError(t, err)

	items, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 3, "expired and foreign items are omitted")

	assert.Equal(t, "Milk", items[0].Name)
	assert.Equal(t, 1, items[0].DaysLeft)
	assert.Equal(t, domain.StatusRed, items[0].Status)
	assert.Equal(t, "Cheese", items[1].Name)
	assert.Equal(t, domain.StatusYellow, items[1].Status)
	assert.Equal(t, "Rice", items[2].Name)
	assert.Equal(t, domain.StatusGreen, items[2].Status)
}

func TestInventoryService_Update_ScopedToOwner(t *testing.T) {
	svc, _ := newInventory()
	ctx := context.Background()

	it, err := svc.Create(ctx, "alice", request("Milk", 1, 3))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "bob", it.ID, request("Stolen", 1, 3))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := svc.Update(ctx, "alice", it.ID, request("Oat milk", 2, 5))
	require.NoError(t, err)
	assert.Equal(t, "Oat milk", updated.Name)
	assert.Equal(t, it.CreatedAt, updated.CreatedAt)
}

func TestInventoryService_AdjustQuantity(t *testing.T) {
	svc, repo := newInventory()
	ctx := context.Background()

	it, err := svc.Create(ctx, "alice", request("Eggs", 6, 3))
	require.NoError(t, err)

	got, deleted, err := svc.AdjustQuantity(ctx, "alice", it.ID, -2)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.InDelta(t, 4.0, got.Quantity, 1e-9)

	got, deleted, err = svc.AdjustQuantity(ctx, "alice", it.ID, -4)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Nil(t, got)
	assert.Zero(t, repo.Count())
}

func TestInventoryService_AdjustQuantity_Errors(t *testing.T) {
	svc, _ := newInventory()
	ctx := context.Background()

	it, err := svc.Create(ctx, "alice", request("Eggs", 6, 3))
	require.NoError(t, err)

	_, _, err = svc.AdjustQuantity(ctx, "alice", it.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, _, err = svc.AdjustQuantity(ctx, "bob", it.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventoryService_PurgeExpired(t *testing.T) {
	svc, repo := newInventory()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", request("Old", 1, -1))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", request("Today", 1, 0))
	require.NoError(t, err)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, repo.Count())
}

func TestTokenService(t *testing.T) {
	repo := repository.NewMockTokenRepository()
	svc := service.NewTokenService(repo, zap.NewNop())
	ctx := context.Background()

	tok, err := svc.Register(ctx, "alice", domain.RegisterTokenRequest{Token: "abc"})
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformWeb, tok.Platform)

	_, err = svc.Register(ctx, "alice", domain.RegisterTokenRequest{Token: "abc", Platform: "fax"})
	assert.ErrorIs(t, err, domain.ErrInvalidPlatform)

	assert.ErrorIs(t, svc.Remove(ctx, "bob", "abc"), domain.ErrNotFound)
	require.NoError(t, svc.Remove(ctx, "alice", "abc"))

	found, err := repo.FindByUsers(ctx, []string{"alice"})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestAnalyticsService_Report(t *testing.T) {
	inv, _ := newInventory()
	svc := service.NewAnalyticsService(inv)
	ctx := context.Background()

	_, err := inv.Create(ctx, "alice", request("Milk", 2, 2))
	require.NoError(t, err)
	_, err = inv.Create(ctx, "bob", request("Eggs", 5, 2))
	require.NoError(t, err)

	r, err := svc.Report(ctx, "alice", analytics.PeriodWeekly, 15)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, r.Total, 1e-9)
	assert.True(t, r.OverBudget)
	assert.Equal(t, 1, r.ExpiringSoon)
	assert.InDelta(t, 20.0, r.Trend[6].Cost, 1e-9)

	_, err = svc.Report(ctx, "alice", analytics.PeriodMonthly, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidBudget)
}
