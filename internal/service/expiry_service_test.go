package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/provider"
	"github.com/smarthousehold/inventory-service/internal/repository"
	"github.com/smarthousehold/inventory-service/internal/runlock"
	"github.com/smarthousehold/inventory-service/internal/service"
	"github.com/smarthousehold/inventory-service/internal/worker"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// 09:00 IST on 2026-03-10.
var runAt = time.Date(2026, 3, 10, 9, 0, 0, 0, ist)

type recordingProvider struct {
	mu     sync.Mutex
	msgs   map[string]domain.PushMessage
	failOn map[string]bool
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{msgs: make(map[string]domain.PushMessage), failOn: make(map[string]bool)}
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) SendMulticast(_ context.Context, msg *domain.PushMessage) (*provider.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs[msg.UserID] = *msg
	if p.failOn[msg.UserID] {
		return nil, errors.New("provider rejected request")
	}
	return &provider.Result{SuccessCount: len(msg.Tokens)}, nil
}

func (p *recordingProvider) users() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ids []string
	for id := range p.msgs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type fixture struct {
	items  *repository.MockItemRepository
	tokens *repository.MockTokenRepository
	prov   *recordingProvider
	svc    *service.ExpiryService
}

func newFixture(t *testing.T, lock runlock.Locker) *fixture {
	t.Helper()
	f := &fixture{
		items:  repository.NewMockItemRepository(),
		tokens: repository.NewMockTokenRepository(),
		prov:   newRecordingProvider(),
	}
	d := worker.NewDispatcher(f.prov, nil, time.Second, zap.NewNop(), worker.MetricHooks{})
	f.svc = service.NewExpiryService(f.items, f.tokens, d, lock, service.ExpiryConfig{
		Location: ist,
		Now:      func() time.Time { return runAt },
	}, zap.NewNop())
	return f
}

func (f *fixture) addItem(t *testing.T, userID, name, expiry string) {
	t.Helper()
	d, err := domain.ParseDate(expiry)
	require.NoError(t, err)
	require.NoError(t, f.items.Create(context.Background(), &domain.Item{
		ID: fmt.Sprintf("%s-%s", userID, name), UserID: userID, Name: name,
		Category: "Food", Quantity: 1, ExpiryDate: d,
	}))
}

func (f *fixture) addToken(t *testing.T, userID, token string) {
	t.Helper()
	require.NoError(t, f.tokens.Upsert(context.Background(), domain.PushToken{
		UserID: userID, Token: token, Platform: domain.PlatformWeb,
	}))
}

func TestExpiryService_Run_DispatchesPerUser(t *testing.T) {
	f := newFixture(t, nil)
	f.addItem(t, "alice", "Bread", "2026-03-11")
	f.addItem(t, "alice", "Milk", "2026-03-10")
	f.addItem(t, "alice", "Rice", "2026-03-15")
	f.addItem(t, "bob", "Eggs", "2026-03-11")
	f.addItem(t, "carol", "Cheese", "2026-03-10")
	f.addItem(t, "dave", "Jam", "2026-03-20")
	f.addToken(t, "alice", "alice-phone")
	f.addToken(t, "alice", "alice-laptop")
	f.addToken(t, "bob", "bob-phone")

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDispatched, report.Outcome)
	assert.Equal(t, "2026-03-10", report.Date.String())
	assert.Equal(t, 5, report.ItemsFetched, "Jam is beyond the 7-day horizon")
	assert.Equal(t, 4, report.Candidates, "Rice is fetched but not notified")
	assert.Equal(t, 3, report.Users)
	assert.Equal(t, 1, report.UsersSkipped, "carol has no tokens")
	assert.Equal(t, 2, report.Dispatched)
	assert.Equal(t, 2, report.Succeeded)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 3, report.TokensSucceeded)

	assert.Equal(t, []string{"alice", "bob"}, f.prov.users())
	alice := f.prov.msgs["alice"]
	assert.Equal(t, "Smart Household Assistant", alice.Title)
	assert.Equal(t, "Milk expires today\nBread expires tomorrow", alice.Body)
	assert.ElementsMatch(t, []string{"alice-phone", "alice-laptop"}, alice.Tokens)
	assert.Equal(t, domain.DefaultHints, alice.Hints)

	require.Len(t, f.tokens.RequestedUsers, 1)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, f.tokens.RequestedUsers[0])
}

func TestExpiryService_Run_OverflowBody(t *testing.T) {
	f := newFixture(t, nil)
	f.addItem(t, "alice", "Yogurt", "2026-03-11")
	f.addItem(t, "alice", "Milk", "2026-03-10")
	f.addItem(t, "alice", "Bread", "2026-03-11")
	f.addItem(t, "alice", "Paneer", "2026-03-10")
	f.addItem(t, "alice", "Spinach", "2026-03-11")
	f.addToken(t, "alice", "tok")

	_, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t,
		"Milk expires today\nPaneer expires today\nYogurt expires tomorrow\n+2 more items.",
		f.prov.msgs["alice"].Body)
}

func TestExpiryService_Run_NoCandidates(t *testing.T) {
	f := newFixture(t, nil)
	f.addItem(t, "alice", "Rice", "2026-03-14")
	f.addToken(t, "alice", "tok")

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeNoCandidates, report.Outcome)
	assert.Equal(t, 1, report.ItemsFetched)
	assert.Empty(t, f.tokens.RequestedUsers, "no token lookup without candidates")
	assert.Empty(t, f.prov.users())
}

func TestExpiryService_Run_ScanFailureAborts(t *testing.T) {
	f := newFixture(t, nil)
	f.items.FindExpiringErr = errors.New("connection refused")

	report, err := f.svc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScanFailed)
	assert.Equal(t, domain.OutcomeFailed, report.Outcome)
	assert.Contains(t, report.Error, "connection refused")
	assert.Empty(t, f.tokens.RequestedUsers)
	assert.Empty(t, f.prov.users())
}

func TestExpiryService_Run_TokenLookupFailureAborts(t *testing.T) {
	f := newFixture(t, nil)
	f.addItem(t, "alice", "Milk", "2026-03-10")
	f.tokens.FindByUsersErr = errors.New("timeout")

	report, err := f.svc.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrTokenLookupFailed)
	assert.Equal(t, domain.OutcomeFailed, report.Outcome)
	assert.Empty(t, f.prov.users())
}

func TestExpiryService_Run_ProviderFailureIsolated(t *testing.T) {
	f := newFixture(t, nil)
	f.addItem(t, "alice", "Milk", "2026-03-10")
	f.addItem(t, "bob", "Eggs", "2026-03-11")
	f.addItem(t, "carol", "Curd", "2026-03-10")
	f.addToken(t, "alice", "a")
	f.addToken(t, "bob", "b")
	f.addToken(t, "carol", "c")
	f.prov.failOn["bob"] = true

	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDispatched, report.Outcome)
	assert.Equal(t, 3, report.Dispatched)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, []string{"bob"}, report.FailedUserIDs())
	assert.Equal(t, []string{"alice", "bob", "carol"}, f.prov.users())
}

func TestExpiryService_Run_SkipsWhenLocked(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t, runlock.NewRedisLocker(client, "expiry-check:", time.Hour))
	f.addItem(t, "alice", "Milk", "2026-03-10")
	f.addToken(t, "alice", "a")

	first, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDispatched, first.Outcome)

	second, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, second.Outcome)
	assert.Equal(t, 1, f.items.FindExpiringCalls)
}

func TestExpiryService_Run_ReleasesLockAfterFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t, runlock.NewRedisLocker(client, "expiry-check:", time.Hour))
	f.items.FindExpiringErr = errors.New("db down")

	_, err := f.svc.Run(context.Background())
	require.Error(t, err)
	assert.False(t, mr.Exists("expiry-check:2026-03-10"))

	f.items.FindExpiringErr = nil
	report, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoCandidates, report.Outcome)
}

func TestExpiryService_LastReport(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.LastReport()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Run(context.Background())
	require.NoError(t, err)

	last, err := f.svc.LastReport()
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoCandidates, last.Outcome)
}
