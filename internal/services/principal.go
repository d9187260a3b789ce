// Package services glues the realm resolver to the ambient concerns of
// the server: principal caching and metrics.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/dbrealm/internal/core"
	"github.com/go-authgate/dbrealm/internal/realm"
)

const principalKeyPrefix = "principal:"

// PrincipalService resolves principals through the realm resolver with
// optional cache-aside on successful results. Failed resolutions
// (unknown user, no authorities, store errors) are never cached.
type PrincipalService struct {
	resolver *realm.Resolver
	cache    core.Cache[realm.Principal] // nil disables caching
	metrics  core.Recorder
	cacheTTL time.Duration
}

func NewPrincipalService(
	resolver *realm.Resolver,
	c core.Cache[realm.Principal],
	recorder core.Recorder,
	cacheTTL time.Duration,
) (*PrincipalService, error) {
	if resolver == nil {
		return nil, fmt.Errorf("services: resolver must not be nil")
	}
	if recorder == nil {
		return nil, fmt.Errorf("services: metrics recorder must not be nil")
	}
	return &PrincipalService{
		resolver: resolver,
		cache:    c,
		metrics:  recorder,
		cacheTTL: cacheTTL,
	}, nil
}

// Lookup resolves the principal for username and records the outcome.
func (s *PrincipalService) Lookup(ctx context.Context, username string) (*realm.Principal, error) {
	start := time.Now()
	principal, err := s.lookup(ctx, username)
	s.metrics.RecordLookup(lookupResult(err), time.Since(start))
	return principal, err
}

func (s *PrincipalService) lookup(ctx context.Context, username string) (*realm.Principal, error) {
	if s.cache == nil {
		return s.resolve(ctx, username)
	}

	fetched := false
	value, err := s.cache.GetWithFetch(ctx, principalKeyPrefix+username, s.cacheTTL,
		func(ctx context.Context, _ string) (realm.Principal, error) {
			fetched = true
			principal, err := s.resolve(ctx, username)
			if err != nil {
				return realm.Principal{}, err
			}
			return *principal, nil
		})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCacheResult(!fetched)
	return &value, nil
}

func (s *PrincipalService) resolve(ctx context.Context, username string) (*realm.Principal, error) {
	principal, err := s.resolver.Resolve(ctx, username)
	if err != nil && lookupResult(err) == core.LookupResultError {
		s.metrics.RecordQueryError("principal_lookup")
	}
	return principal, err
}

// Evict drops the cached principal for username. Call it after grant or
// account changes so the next Lookup sees the store's current state.
func (s *PrincipalService) Evict(ctx context.Context, username string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, principalKeyPrefix+username)
}

func lookupResult(err error) string {
	switch {
	case err == nil:
		return core.LookupResultOK
	case errors.Is(err, realm.ErrUserNotFound):
		return core.LookupResultUserNotFound
	case errors.Is(err, realm.ErrNoAuthority):
		return core.LookupResultNoAuthority
	default:
		return core.LookupResultError
	}
}
