package sources_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip_planner/internal/adapters/cache"
	"trip_planner/internal/domain"
	"trip_planner/internal/sources"
)

type query struct {
	Location string
	Budget   float64
}

func (q query) Params() map[string]any {
	m := map[string]any{"location": q.Location}
	if q.Budget > 0 {
		m["budget"] = q.Budget
	}
	return m
}

// fakeProvider returns live offers, an error, or panics, and counts fetches.
type fakeProvider struct {
	calls atomic.Int32
	fetch func(ctx context.Context) (domain.Offers, error)
}

func (*fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(ctx context.Context, q query) (domain.Offers, error) {
	p.calls.Add(1)
	return p.fetch(ctx)
}

func (*fakeProvider) Mock(q query) domain.Offers {
	return domain.Offers{
		domain.Attraction{OfferBase: domain.OfferBase{Name: "fallback " + q.Location, Source: domain.SourceMock}},
	}
}

// ttlCache records the TTL of every write.
type ttlCache struct {
	*cache.Memory
	ttls map[string]int
}

func newTTLCache() *ttlCache {
	return &ttlCache{Memory: cache.NewMemory(cache.DefaultTTL), ttls: map[string]int{}}
}

func (c *ttlCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.ttls[key] = ttlSec
	return c.Memory.Set(ctx, key, v, ttlSec)
}

func live(name string) domain.Offers {
	return domain.Offers{domain.Attraction{OfferBase: domain.OfferBase{Name: name, EstimatedCost: 100, Source: domain.SourceGoogle}}}
}

func TestSource_LiveThenCached(t *testing.T) {
	p := &fakeProvider{fetch: func(context.Context) (domain.Offers, error) { return live("Temple"), nil }}
	c := newTTLCache()
	s := sources.New[query](p, c, time.Second)
	ctx := context.Background()

	first := s.Search(ctx, query{Location: "bali"})
	second := s.Search(ctx, query{Location: "bali"})

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, p.calls.Load(), "second search must be served from cache")
	assert.Equal(t, cache.DefaultTTL, c.ttls["fake:location:bali"])
}

func TestSource_KeyIgnoresAbsentFields(t *testing.T) {
	p := &fakeProvider{fetch: func(context.Context) (domain.Offers, error) { return live("Temple"), nil }}
	s := sources.New[query](p, newTTLCache(), time.Second)
	ctx := context.Background()

	s.Search(ctx, query{Location: "bali"})
	s.Search(ctx, query{Location: "bali", Budget: 0})
	assert.EqualValues(t, 1, p.calls.Load())

	s.Search(ctx, query{Location: "bali", Budget: 500})
	assert.EqualValues(t, 2, p.calls.Load(), "a different budget is a different request")
}

func TestSource_FallbackOnFailure(t *testing.T) {
	cases := map[string]func(ctx context.Context) (domain.Offers, error){
		"error": func(context.Context) (domain.Offers, error) { return nil, errors.New("boom") },
		"panic": func(context.Context) (domain.Offers, error) { panic("provider bug") },
		"timeout": func(ctx context.Context) (domain.Offers, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	for name, fetch := range cases {
		t.Run(name, func(t *testing.T) {
			p := &fakeProvider{fetch: fetch}
			c := newTTLCache()
			s := sources.New[query](p, c, 50*time.Millisecond)

			got := s.Search(context.Background(), query{Location: "goa"})
			require.NotEmpty(t, got)
			for _, o := range got {
				assert.Equal(t, domain.SourceMock, o.Common().Source)
			}
			assert.Equal(t, cache.FallbackTTL, c.ttls["fake:location:goa"])

			// the fallback is cached like any answer
			s.Search(context.Background(), query{Location: "goa"})
			assert.EqualValues(t, 1, p.calls.Load())
		})
	}
}

func TestSource_EmptyLiveAnswerIsKeptBriefly(t *testing.T) {
	p := &fakeProvider{fetch: func(context.Context) (domain.Offers, error) { return domain.Offers{}, nil }}
	c := newTTLCache()
	s := sources.New[query](p, c, time.Second)

	got := s.Search(context.Background(), query{Location: "nowhere"})
	assert.Empty(t, got)
	assert.Equal(t, cache.FallbackTTL, c.ttls["fake:location:nowhere"])
}

func TestSource_UndecodableCacheEntryIsAMiss(t *testing.T) {
	p := &fakeProvider{fetch: func(context.Context) (domain.Offers, error) { return live("Temple"), nil }}
	c := newTTLCache()
	ctx := context.Background()
	key := cache.MakeKey("fake", query{Location: "bali"}.Params())
	require.NoError(t, c.Memory.Set(ctx, key, json.RawMessage(`[{"type":"legacy_offer"}]`), 0))

	s := sources.New[query](p, c, time.Second)
	got := s.Search(ctx, query{Location: "bali"})

	require.Len(t, got, 1)
	assert.Equal(t, "Temple", got[0].Common().Name)
	assert.EqualValues(t, 1, p.calls.Load())

	// the live answer replaced the stale entry
	var stored domain.Offers
	ok, err := c.Get(ctx, key, &stored)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, got, stored)
}

func TestSource_CancelledCallerDoesNotCacheFallback(t *testing.T) {
	p := &fakeProvider{fetch: func(ctx context.Context) (domain.Offers, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return live("Fort"), nil
	}}
	c := newTTLCache()
	s := sources.New[query](p, c, time.Second)

	gone, cancel := context.WithCancel(context.Background())
	cancel()
	got := s.Search(gone, query{Location: "goa"})
	require.NotEmpty(t, got)
	assert.Equal(t, domain.SourceMock, got[0].Common().Source)
	assert.Zero(t, c.Len())

	got = s.Search(context.Background(), query{Location: "goa"})
	require.Len(t, got, 1)
	assert.Equal(t, "Fort", got[0].Common().Name)
	assert.EqualValues(t, 2, p.calls.Load())
}

func TestToINR(t *testing.T) {
	assert.Equal(t, 8300.0, sources.ToINR(100, "USD"))
	assert.Equal(t, 9045.0, sources.ToINR(100.5, "eur"))
	assert.Equal(t, 1234.0, sources.ToINR(1233.6, "INR"))
	assert.Equal(t, 50.0, sources.ToINR(50, "XYZ"), "unknown currencies pass through")
	assert.Equal(t, 0.0, sources.ToINR(-3, "USD"))
	assert.Equal(t, 0.0, sources.ToINR(math.NaN(), "INR"))
	assert.Equal(t, 0.0, sources.ToINR(math.Inf(1), "USD"))
	assert.Equal(t, 0.0, sources.ToINR(math.Inf(-1), "EUR"))
}

func TestCoordinates(t *testing.T) {
	assert.Equal(t, domain.GeoPoint{Lat: 15.2993, Lng: 74.124}, sources.Coordinates(" Goa "))
	assert.Equal(t, sources.Coordinates("bali"), sources.Coordinates("Atlantis"))
}
