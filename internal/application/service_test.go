package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/daily-fortune/internal/adapters/cache/memory"
	"github.com/bnema/daily-fortune/internal/domain"
	"github.com/bnema/daily-fortune/internal/ports"
	"github.com/bnema/daily-fortune/internal/ports/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedRandom int

func (f fixedRandom) IntN(n int) int {
	return int(f) % n
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type fixture struct {
	service        *Service
	almanacs       *mocks.MockAlmanacProvider
	constellations *mocks.MockConstellationProvider
	quotes         *mocks.MockQuoteProvider
	almanacCache   *memory.Store[domain.AlmanacRecord]
	starCache      *memory.Store[domain.ConstellationRecord]
	clock          *testClock
}

func newFixture(t *testing.T, policy FallbackPolicy) fixture {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)}
	f := fixture{
		almanacs:       mocks.NewMockAlmanacProvider(t),
		constellations: mocks.NewMockConstellationProvider(t),
		quotes:         mocks.NewMockQuoteProvider(t),
		almanacCache:   memory.NewStore[domain.AlmanacRecord](memory.ResponseTTL, clock),
		starCache:      memory.NewStore[domain.ConstellationRecord](memory.ResponseTTL, clock),
		clock:          clock,
	}
	f.service = NewService(Dependencies{
		Almanacs:           f.almanacs,
		Constellations:     f.constellations,
		Quotes:             f.quotes,
		AlmanacCache:       f.almanacCache,
		ConstellationCache: f.starCache,
		Clock:              clock,
		Random:             fixedRandom(3),
		Logger:             zerolog.Nop(),
	}, policy)

	return f
}

func TestCacheKey(t *testing.T) {
	day := time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "fortune_2026-10-15", CacheKey(KindAlmanac, "", day))
	assert.Equal(t, "constellation_aries_2026-10-15", CacheKey(KindConstellation, domain.SignAries, day))

	shanghai := time.FixedZone("CST", 8*60*60)
	assert.Equal(t, "fortune_2026-10-15", CacheKey(KindAlmanac, "", time.Date(2026, 10, 16, 7, 0, 0, 0, shanghai)))
	assert.NotEqual(t,
		CacheKey(KindConstellation, domain.SignLeo, day),
		CacheKey(KindConstellation, domain.SignLeo, day.Add(time.Minute)),
	)
}

func TestAlmanacFetchesOnceThenServesFromCache(t *testing.T) {
	f := newFixture(t, FallbackNone)
	record := domain.AlmanacRecord{DateInfo: domain.AlmanacDateInfo{GregorianDate: "2026-10-15", LunarFormatted: "九月初五"}}
	f.almanacs.On("FetchAlmanac", mock.Anything, f.clock.Now()).Return(record, nil).Once()

	first, err := f.service.Almanac(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceUpstream, first.Source)
	assert.Equal(t, "fortune_2026-10-15", first.Key)

	second, err := f.service.Almanac(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, record, second.Record)
}

func TestConstellationCacheKeysNeverCollideAcrossDays(t *testing.T) {
	f := newFixture(t, FallbackNone)
	day1 := f.clock.Now()
	day2 := day1.Add(24 * time.Hour)

	f.constellations.On("FetchConstellation", mock.Anything, domain.SignAries, day1).
		Return(domain.ConstellationRecord{Sign: domain.SignAries, Date: "2026-10-15"}, nil).Once()
	f.constellations.On("FetchConstellation", mock.Anything, domain.SignAries, day2).
		Return(domain.ConstellationRecord{Sign: domain.SignAries, Date: "2026-10-16"}, nil).Once()

	first, err := f.service.Constellation(context.Background(), "aries")
	require.NoError(t, err)

	f.clock.Set(day2)
	second, err := f.service.Constellation(context.Background(), "aries")
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, "2026-10-15", first.Record.Date)
	assert.Equal(t, "2026-10-16", second.Record.Date)
	assert.Equal(t, SourceUpstream, second.Source)
}

func TestConstellationResolvesEitherNamingScheme(t *testing.T) {
	f := newFixture(t, FallbackNone)
	f.constellations.On("FetchConstellation", mock.Anything, domain.SignScorpio, mock.Anything).
		Return(domain.ConstellationRecord{Sign: domain.SignScorpio}, nil).Once()
	f.constellations.On("FetchConstellation", mock.Anything, domain.SignAries, mock.Anything).
		Return(domain.ConstellationRecord{Sign: domain.SignAries}, nil).Once()

	chinese, err := f.service.Constellation(context.Background(), "天蝎座")
	require.NoError(t, err)
	romanized, err := f.service.Constellation(context.Background(), "scorpio")
	require.NoError(t, err)

	assert.Equal(t, chinese.Key, romanized.Key)
	assert.Equal(t, SourceCache, romanized.Source)

	unknown, err := f.service.Constellation(context.Background(), "ophiuchus")
	require.NoError(t, err)
	assert.Equal(t, domain.SignAries, unknown.Record.Sign)
	assert.Equal(t, "constellation_aries_2026-10-15", unknown.Key)
}

func TestFailureWithoutFallbackIsSurfacedAndNotCached(t *testing.T) {
	f := newFixture(t, FallbackNone)
	upstreamErr := &domain.UpstreamHTTPError{StatusCode: 500}
	f.constellations.On("FetchConstellation", mock.Anything, domain.SignAries, mock.Anything).
		Return(domain.ConstellationRecord{}, upstreamErr).Twice()

	for i := 0; i < 2; i++ {
		_, err := f.service.Constellation(context.Background(), "aries")
		require.Error(t, err)

		var httpErr *domain.UpstreamHTTPError
		require.ErrorAs(t, err, &httpErr)
	}

	assert.Zero(t, f.starCache.Len())
}

func TestMissingKeyWithoutFallback(t *testing.T) {
	f := newFixture(t, FallbackNone)
	f.almanacs.On("FetchAlmanac", mock.Anything, mock.Anything).
		Return(domain.AlmanacRecord{}, domain.ErrMissingAPIKey).Once()

	_, err := f.service.Almanac(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

func TestFailureWithFallbackSynthesizesAndCachesPlaceholder(t *testing.T) {
	f := newFixture(t, FallbackPlaceholder)
	f.constellations.On("FetchConstellation", mock.Anything, domain.SignLeo, mock.Anything).
		Return(domain.ConstellationRecord{}, &domain.TransportError{Err: errors.New("dial tcp: i/o timeout")}).Once()

	first, err := f.service.Constellation(context.Background(), "狮子座")
	require.NoError(t, err)
	assert.Equal(t, SourcePlaceholder, first.Source)
	assert.Equal(t, domain.SignLeo, first.Record.Sign)
	assert.Equal(t, "狮子座", first.Record.Name)
	assert.Equal(t, "2026-10-15", first.Record.Date)
	assert.NotEmpty(t, first.Record.OverallFortune)
	assert.NotEmpty(t, first.Record.LuckyColor)
	assert.GreaterOrEqual(t, first.Record.LuckyNumber, 1)
	assert.LessOrEqual(t, first.Record.LuckyNumber, 100)
	for _, v := range first.Record.Indices.Values() {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}

	second, err := f.service.Constellation(context.Background(), "leo")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Record, second.Record)
}

func TestAlmanacFallbackPlaceholder(t *testing.T) {
	f := newFixture(t, FallbackPlaceholder)
	f.almanacs.On("FetchAlmanac", mock.Anything, mock.Anything).
		Return(domain.AlmanacRecord{}, domain.ErrMissingAPIKey).Once()

	result, err := f.service.Almanac(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourcePlaceholder, result.Source)
	assert.Equal(t, "2026-10-15", result.Record.DateInfo.GregorianDate)
	assert.NotEmpty(t, result.Record.FortuneInfo.Fitness)
	assert.Len(t, result.Record.FortuneInfo.FitnessItems, 3)
	assert.Equal(t, 1, f.almanacCache.Len())
}

func TestConcurrentMissesShareOneUpstreamCall(t *testing.T) {
	f := newFixture(t, FallbackNone)
	f.constellations.On("FetchConstellation", mock.Anything, domain.SignGemini, mock.Anything).
		After(50*time.Millisecond).
		Return(domain.ConstellationRecord{Sign: domain.SignGemini}, nil).Once()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.service.Constellation(context.Background(), "gemini")
			if err == nil && result.Record.Sign != domain.SignGemini {
				err = errors.New("unexpected sign")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestCancelledCallerLeavesSharedFetchIntact(t *testing.T) {
	f := newFixture(t, FallbackPlaceholder)
	record := domain.ConstellationRecord{Sign: domain.SignLeo, OverallFortune: "顺风顺水"}

	started := make(chan struct{})
	release := make(chan struct{})
	var fetchCtxErr error
	f.constellations.On("FetchConstellation", mock.Anything, domain.SignLeo, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
			fetchCtxErr = args.Get(0).(context.Context).Err()
		}).
		Return(record, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.service.Constellation(ctx, "leo")
		firstErr <- err
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	waiter := make(chan ConstellationResult, 1)
	go func() {
		result, err := f.service.Constellation(context.Background(), "狮子座")
		assert.NoError(t, err)
		waiter <- result
	}()
	close(release)

	second := <-waiter
	assert.Equal(t, record, second.Record)
	assert.NotEqual(t, SourcePlaceholder, second.Source)

	third, err := f.service.Constellation(context.Background(), "leo")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, third.Source)
	assert.Equal(t, record, third.Record)
	assert.NoError(t, fetchCtxErr)
}

func TestQuotePolicy(t *testing.T) {
	t.Run("upstream quote", func(t *testing.T) {
		f := newFixture(t, FallbackNone)
		f.quotes.On("FetchQuote", mock.Anything).Return(domain.Quote{Text: "hello"}, nil).Once()

		result, err := f.service.Quote(context.Background())
		require.NoError(t, err)
		assert.Equal(t, SourceUpstream, result.Source)
		assert.Equal(t, "hello", result.Quote.Text)
	})

	t.Run("failure without fallback", func(t *testing.T) {
		f := newFixture(t, FallbackNone)
		f.quotes.On("FetchQuote", mock.Anything).Return(domain.Quote{}, &domain.UpstreamHTTPError{StatusCode: 503}).Once()

		_, err := f.service.Quote(context.Background())
		require.ErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("failure with fallback", func(t *testing.T) {
		f := newFixture(t, FallbackPlaceholder)
		f.quotes.On("FetchQuote", mock.Anything).Return(domain.Quote{}, &domain.UpstreamHTTPError{StatusCode: 503}).Once()

		result, err := f.service.Quote(context.Background())
		require.NoError(t, err)
		assert.Equal(t, SourcePlaceholder, result.Source)
		assert.Equal(t, fallbackQuotes[3], result.Quote.Text)
	})

	t.Run("cancelled caller gets no placeholder", func(t *testing.T) {
		f := newFixture(t, FallbackPlaceholder)
		f.quotes.On("FetchQuote", mock.Anything).Return(domain.Quote{}, &domain.TransportError{Err: context.Canceled}).Once()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.service.Quote(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestServiceWithoutProviders(t *testing.T) {
	service := NewService(Dependencies{Logger: zerolog.Nop(), Clock: ports.SystemClock{}}, FallbackNone)

	_, err := service.Almanac(context.Background())
	require.ErrorIs(t, err, ErrProviderNotConfigured)

	_, err = service.Constellation(context.Background(), "aries")
	require.ErrorIs(t, err, ErrProviderNotConfigured)

	_, err = service.Quote(context.Background())
	require.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestSimplifyAndFortuneText(t *testing.T) {
	record := domain.AlmanacRecord{
		DateInfo:    domain.AlmanacDateInfo{LunarFormatted: "九月初五", Jieqi: "寒露"},
		FortuneInfo: domain.AlmanacFortuneInfo{Fitness: "祭祀.祈福", Taboo: "动土"},
	}

	assert.Equal(t, SimpleAlmanac{LunarDate: "九月初五", Fitness: "祭祀.祈福", Taboo: "动土", Festival: "寒露"}, Simplify(record))
	assert.Equal(t, "📅 九月初五\n✅ 宜：祭祀.祈福\n❌ 忌：动土", FortuneText(record))
	assert.Equal(t, "📅 "+domain.LunarPending+"\n✅ 宜：摸鱼\n❌ 忌：加班", FortuneText(domain.AlmanacRecord{}))
}

func TestPlaceholderGeneratorIsDrivenByRandomSource(t *testing.T) {
	gen := NewPlaceholderGenerator(fixedRandom(0))
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	record := gen.Constellation(domain.SignTaurus, day)
	assert.Equal(t, overallFortunes[0], record.OverallFortune)
	assert.Equal(t, luckyColors[0], record.LuckyColor)
	assert.Equal(t, 1, record.LuckyNumber)
	assert.Equal(t, domain.ConstellationIndices{Comprehensive: 60, Love: 60, Work: 60, Money: 60, Health: 60}, record.Indices)

	almanac := gen.Almanac(day)
	assert.Equal(t, "农历1月1日", almanac.DateInfo.LunarFormatted)
	assert.Equal(t, "甲子月", almanac.DateInfo.MonthGanzhi)
	assert.Equal(t, "东方", almanac.FortuneInfo.Shenwei)
	assert.Equal(t, "冲鼠(东)", almanac.FortuneInfo.Chongsha)
}
