package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/daily-fortune/internal/domain"
	"github.com/bnema/daily-fortune/internal/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var ErrProviderNotConfigured = errors.New("provider is not configured")

// FallbackPolicy decides what happens when the upstream fails.
type FallbackPolicy int

const (
	// FallbackNone surfaces the failure to the caller.
	FallbackNone FallbackPolicy = iota
	// FallbackPlaceholder answers with synthesized content and caches it.
	FallbackPlaceholder
)

type Dependencies struct {
	Almanacs           ports.AlmanacProvider
	Constellations     ports.ConstellationProvider
	Quotes             ports.QuoteProvider
	AlmanacCache       ports.Cache[domain.AlmanacRecord]
	ConstellationCache ports.Cache[domain.ConstellationRecord]
	Clock              ports.Clock
	Random             domain.RandomSource
	Logger             zerolog.Logger
}

// Service resolves records through cache lookup, upstream fetch and cache
// store. Concurrent misses on the same key share a single upstream call.
type Service struct {
	almanacs           ports.AlmanacProvider
	constellations     ports.ConstellationProvider
	quotes             ports.QuoteProvider
	almanacCache       ports.Cache[domain.AlmanacRecord]
	constellationCache ports.Cache[domain.ConstellationRecord]
	clock              ports.Clock
	placeholders       PlaceholderGenerator
	policy             FallbackPolicy
	logger             zerolog.Logger

	flight singleflight.Group
}

func NewService(deps Dependencies, policy FallbackPolicy) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	rng := deps.Random
	if rng == nil {
		rng = ports.SystemRandom{}
	}

	return &Service{
		almanacs:           deps.Almanacs,
		constellations:     deps.Constellations,
		quotes:             deps.Quotes,
		almanacCache:       deps.AlmanacCache,
		constellationCache: deps.ConstellationCache,
		clock:              clock,
		placeholders:       NewPlaceholderGenerator(rng),
		policy:             policy,
		logger:             deps.Logger.With().Str("component", "fortune-service").Logger(),
	}
}

func (s *Service) Policy() FallbackPolicy {
	return s.policy
}

// Almanac returns today's (UTC) almanac record.
func (s *Service) Almanac(ctx context.Context) (AlmanacResult, error) {
	today := s.clock.Now().UTC()
	key := CacheKey(KindAlmanac, "", today)

	if record, ok := lookup(s.almanacCache, key); ok {
		return AlmanacResult{Record: record, Source: SourceCache, Key: key}, nil
	}

	return share(ctx, &s.flight, key, func(ctx context.Context) (AlmanacResult, error) {
		if record, ok := lookup(s.almanacCache, key); ok {
			return AlmanacResult{Record: record, Source: SourceCache, Key: key}, nil
		}

		var (
			record   domain.AlmanacRecord
			fetchErr = ErrProviderNotConfigured
		)
		if s.almanacs != nil {
			record, fetchErr = s.almanacs.FetchAlmanac(ctx, today)
		}
		if fetchErr == nil {
			store(s.almanacCache, key, record)
			return AlmanacResult{Record: record, Source: SourceUpstream, Key: key}, nil
		}

		if !s.fallbackAllowed(fetchErr, key) {
			return AlmanacResult{}, fmt.Errorf("almanac: %w", fetchErr)
		}

		record = s.placeholders.Almanac(today)
		store(s.almanacCache, key, record)
		return AlmanacResult{Record: record, Source: SourcePlaceholder, Key: key}, nil
	})
}

// Constellation returns today's (UTC) record for the sign named by token.
// Unknown or empty tokens resolve to the default sign.
func (s *Service) Constellation(ctx context.Context, token string) (ConstellationResult, error) {
	sign := domain.ResolveSign(token)
	today := s.clock.Now().UTC()
	key := CacheKey(KindConstellation, sign, today)

	if record, ok := lookup(s.constellationCache, key); ok {
		return ConstellationResult{Record: record, Source: SourceCache, Key: key}, nil
	}

	return share(ctx, &s.flight, key, func(ctx context.Context) (ConstellationResult, error) {
		if record, ok := lookup(s.constellationCache, key); ok {
			return ConstellationResult{Record: record, Source: SourceCache, Key: key}, nil
		}

		var (
			record   domain.ConstellationRecord
			fetchErr = ErrProviderNotConfigured
		)
		if s.constellations != nil {
			record, fetchErr = s.constellations.FetchConstellation(ctx, sign, today)
		}
		if fetchErr == nil {
			store(s.constellationCache, key, record)
			return ConstellationResult{Record: record, Source: SourceUpstream, Key: key}, nil
		}

		if !s.fallbackAllowed(fetchErr, key) {
			return ConstellationResult{}, fmt.Errorf("constellation %s: %w", sign, fetchErr)
		}

		record = s.placeholders.Constellation(sign, today)
		store(s.constellationCache, key, record)
		return ConstellationResult{Record: record, Source: SourcePlaceholder, Key: key}, nil
	})
}

// Quote fetches a fresh sentence on every call; quotes are not cached.
func (s *Service) Quote(ctx context.Context) (QuoteResult, error) {
	fetchErr := ErrProviderNotConfigured
	if s.quotes != nil {
		quote, err := s.quotes.FetchQuote(ctx)
		if err == nil {
			return QuoteResult{Quote: quote, Source: SourceUpstream}, nil
		}
		fetchErr = err
	}
	if err := ctx.Err(); err != nil {
		return QuoteResult{}, fmt.Errorf("quote: %w", err)
	}

	if !s.fallbackAllowed(fetchErr, "quote") {
		return QuoteResult{}, fmt.Errorf("quote: %w", fetchErr)
	}

	return QuoteResult{Quote: s.placeholders.Quote(), Source: SourcePlaceholder}, nil
}

func (s *Service) fallbackAllowed(err error, key string) bool {
	event := s.logger.Warn()
	if errors.Is(err, domain.ErrMissingAPIKey) {
		event = s.logger.Info()
	}
	event.Err(err).
		Str("key", key).
		Bool("fallback", s.policy == FallbackPlaceholder).
		Msg("upstream fetch failed")

	return s.policy == FallbackPlaceholder
}

// share runs fetch once per key for all concurrent callers. The fetch does not
// observe caller cancellation: a cancelled caller returns its ctx error while
// the fetch completes for the remaining waiters and the cache.
func share[T any](ctx context.Context, group *singleflight.Group, key string, fetch func(context.Context) (T, error)) (T, error) {
	detached := context.WithoutCancel(ctx)
	ch := group.DoChan(key, func() (any, error) {
		return fetch(detached)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func lookup[T any](cache ports.Cache[T], key string) (T, bool) {
	if cache == nil {
		var zero T
		return zero, false
	}
	return cache.Get(key)
}

func store[T any](cache ports.Cache[T], key string, value T) {
	if cache != nil {
		cache.Set(key, value)
	}
}
