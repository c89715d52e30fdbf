// Package sources implements the six category data sources. Each one serves
// from cache, then from its live provider, and falls back to a fixed
// catalog on any provider failure, so Search never fails.
package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/cache"
	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
)

// Query is a typed source request. Params renders it for the cache key;
// absent fields must be nil.
type Query interface {
	Params() map[string]any
}

// Provider is the category-specific half of a Source: how to fetch and
// normalize live data, and what to serve when that fails.
type Provider[Q Query] interface {
	// Name is the cache key prefix and metrics label.
	Name() string
	Fetch(ctx context.Context, q Q) (domain.Offers, error)
	// Mock returns the deterministic fallback catalog; every offer carries
	// domain.SourceMock.
	Mock(q Q) domain.Offers
}

const DefaultTimeout = 10 * time.Second

type Source[Q Query] struct {
	p       Provider[Q]
	cache   domain.Cache
	timeout time.Duration
}

func New[Q Query](p Provider[Q], c domain.Cache, timeout time.Duration) *Source[Q] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Source[Q]{p: p, cache: c, timeout: timeout}
}

func (s *Source[Q]) Name() string { return s.p.Name() }

// Search returns offers for q. Cache errors are logged and treated as a miss.
func (s *Source[Q]) Search(ctx context.Context, q Q) domain.Offers {
	name := s.p.Name()
	key := cache.MakeKey(name, q.Params())

	var cached domain.Offers
	ok, err := s.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("category", name).Str("key", key).Msg("cache read failed")
		if ok {
			// undecodable entry: drop it so the next caller refetches
			if derr := s.cache.Del(ctx, key); derr != nil {
				log.Warn().Err(derr).Str("key", key).Msg("cache delete failed")
			}
		}
	case ok:
		observability.ObserveSource(name, "hit")
		return cached
	}

	offers, err := s.fetch(ctx, q)
	if err == nil {
		// a genuine zero-match answer is kept only briefly
		ttl := cache.DefaultTTL
		if len(offers) == 0 {
			ttl = cache.FallbackTTL
		}
		s.store(ctx, key, offers, ttl)
		observability.ObserveSource(name, "live")
		return offers
	}

	mock := s.p.Mock(q)
	if ctx.Err() != nil {
		// the caller gave up; the provider was never really asked
		log.Debug().Err(ctx.Err()).Str("category", name).Msg("caller cancelled, fallback not cached")
		observability.ObserveSource(name, "fallback")
		return mock
	}
	log.Warn().Err(err).Str("category", name).Str("key", key).Msg("live fetch failed, serving fallback catalog")
	s.store(ctx, key, mock, cache.FallbackTTL)
	observability.ObserveSource(name, "fallback")
	return mock
}

// fetch bounds the live call by the source timeout and turns a provider
// panic into an ordinary error.
func (s *Source[Q]) fetch(ctx context.Context, q Q) (offers domain.Offers, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			offers, err = nil, fmt.Errorf("%s provider panic: %v", s.p.Name(), r)
		}
	}()
	return s.p.Fetch(ctx, q)
}

func (s *Source[Q]) store(ctx context.Context, key string, offers domain.Offers, ttl int) {
	if err := s.cache.Set(ctx, key, offers, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// opt maps a zero value to nil so MakeKey leaves the field out.
func opt[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}
