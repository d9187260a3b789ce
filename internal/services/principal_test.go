package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/go-authgate/dbrealm/internal/cache"
	"github.com/go-authgate/dbrealm/internal/core"
	"github.com/go-authgate/dbrealm/internal/metrics"
	"github.com/go-authgate/dbrealm/internal/mocks"
	"github.com/go-authgate/dbrealm/internal/models"
	"github.com/go-authgate/dbrealm/internal/realm"
	"github.com/go-authgate/dbrealm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupResolver(t *testing.T) (*store.Store, *realm.Resolver) {
	t.Helper()
	s, err := store.New("sqlite", ":memory:", false)
	require.NoError(t, err)
	r, err := realm.New(s, realm.DefaultOptions())
	require.NoError(t, err)
	return s, r
}

func makeTestUser(t *testing.T, s *store.Store, username string, authorities ...string) {
	t.Helper()
	require.NoError(t, s.CreateUser(&models.User{
		Username: username,
		Password: "opaque",
		Enabled:  true,
	}))
	for _, a := range authorities {
		require.NoError(t, s.GrantAuthority(username, a))
	}
}

// callFetchFn is a DoAndReturn helper that invokes the cache fetch function,
// simulating a cache miss where the real DB fetch is executed.
func callFetchFn[T any](
	ctx context.Context,
	key string,
	_ time.Duration,
	fn func(context.Context, string) (T, error),
) (T, error) {
	return fn(ctx, key)
}

func TestLookupWithoutCache(t *testing.T) {
	s, r := setupResolver(t)
	makeTestUser(t, s, "bob", "ROLE_USER")

	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockRecorder(ctrl)
	recorder.EXPECT().RecordLookup(core.LookupResultOK, gomock.Any()).Times(1)

	svc, err := NewPrincipalService(r, nil, recorder, 0)
	require.NoError(t, err)

	principal, err := svc.Lookup(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", principal.Username)
	assert.True(t, principal.HasAuthority("ROLE_USER"))
}

func TestLookupCacheMiss(t *testing.T) {
	s, r := setupResolver(t)
	makeTestUser(t, s, "bob", "ROLE_USER")

	ctrl := gomock.NewController(t)
	mockCache := mocks.NewMockCache[realm.Principal](ctrl)
	recorder := mocks.NewMockRecorder(ctrl)

	mockCache.EXPECT().
		GetWithFetch(gomock.Any(), "principal:bob", gomock.Any(), gomock.Any()).
		DoAndReturn(callFetchFn[realm.Principal]).Times(1)
	recorder.EXPECT().RecordCacheResult(false).Times(1)
	recorder.EXPECT().RecordLookup(core.LookupResultOK, gomock.Any()).Times(1)

	svc, err := NewPrincipalService(r, mockCache, recorder, 5*time.Minute)
	require.NoError(t, err)

	principal, err := svc.Lookup(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", principal.Username)
}

func TestLookupCacheHit(t *testing.T) {
	s, r := setupResolver(t)
	makeTestUser(t, s, "bob", "ROLE_USER")

	ctrl := gomock.NewController(t)
	mockCache := mocks.NewMockCache[realm.Principal](ctrl)
	recorder := mocks.NewMockRecorder(ctrl)

	cached := realm.Principal{
		Username:    "bob",
		Enabled:     true,
		Authorities: []realm.Authority{{Name: "ROLE_USER"}},
	}
	gomock.InOrder(
		mockCache.EXPECT().
			GetWithFetch(gomock.Any(), "principal:bob", gomock.Any(), gomock.Any()).
			DoAndReturn(callFetchFn[realm.Principal]), // first call: miss, fetch from DB
		mockCache.EXPECT().
			GetWithFetch(gomock.Any(), "principal:bob", gomock.Any(), gomock.Any()).
			Return(cached, nil), // second call: hit, return directly
	)
	recorder.EXPECT().RecordCacheResult(false).Times(1)
	recorder.EXPECT().RecordCacheResult(true).Times(1)
	recorder.EXPECT().RecordLookup(core.LookupResultOK, gomock.Any()).Times(2)

	svc, err := NewPrincipalService(r, mockCache, recorder, 5*time.Minute)
	require.NoError(t, err)

	_, err = svc.Lookup(context.Background(), "bob")
	require.NoError(t, err)
	principal, err := svc.Lookup(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", principal.Username)
}

func TestLookupFailureResults(t *testing.T) {
	s, r := setupResolver(t)
	makeTestUser(t, s, "noauth") // user without any grants

	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockRecorder(ctrl)
	recorder.EXPECT().RecordLookup(core.LookupResultUserNotFound, gomock.Any()).Times(1)
	recorder.EXPECT().RecordLookup(core.LookupResultNoAuthority, gomock.Any()).Times(1)

	svc, err := NewPrincipalService(r, nil, recorder, 0)
	require.NoError(t, err)

	_, err = svc.Lookup(context.Background(), "nobody")
	assert.ErrorIs(t, err, realm.ErrUserNotFound)

	_, err = svc.Lookup(context.Background(), "noauth")
	assert.ErrorIs(t, err, realm.ErrNoAuthority)
}

func TestLookupNegativeResultsNotCached(t *testing.T) {
	s, r := setupResolver(t)

	svc, err := NewPrincipalService(
		r,
		cache.NewMemoryCache[realm.Principal](),
		metrics.NewNoopMetrics(),
		5*time.Minute,
	)
	require.NoError(t, err)

	_, err = svc.Lookup(context.Background(), "bob")
	assert.ErrorIs(t, err, realm.ErrUserNotFound)

	// Provisioning the user afterwards takes effect immediately: the
	// earlier failure was not cached.
	makeTestUser(t, s, "bob", "ROLE_USER")
	principal, err := svc.Lookup(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", principal.Username)
}

func TestEvict(t *testing.T) {
	s, r := setupResolver(t)
	makeTestUser(t, s, "bob", "ROLE_USER")

	svc, err := NewPrincipalService(
		r,
		cache.NewMemoryCache[realm.Principal](),
		metrics.NewNoopMetrics(),
		5*time.Minute,
	)
	require.NoError(t, err)

	principal, err := svc.Lookup(context.Background(), "bob")
	require.NoError(t, err)
	assert.False(t, principal.HasAuthority("ROLE_AUDIT"))

	// A new grant is invisible until the cached principal is evicted.
	require.NoError(t, s.GrantAuthority("bob", "ROLE_AUDIT"))
	principal, err = svc.Lookup(context.Background(), "bob")
	require.NoError(t, err)
	assert.False(t, principal.HasAuthority("ROLE_AUDIT"))

	require.NoError(t, svc.Evict(context.Background(), "bob"))
	principal, err = svc.Lookup(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, principal.HasAuthority("ROLE_AUDIT"))
}

func TestNewPrincipalServiceValidation(t *testing.T) {
	_, r := setupResolver(t)

	_, err := NewPrincipalService(nil, nil, metrics.NewNoopMetrics(), 0)
	assert.Error(t, err)

	_, err = NewPrincipalService(r, nil, nil, 0)
	assert.Error(t, err)
}
