package tianapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/daily-fortune/internal/domain"
	"github.com/bnema/daily-fortune/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingTransportServesRepeatedGetFromMemory(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(lunarPayload))
	}))
	t.Cleanup(server.Close)

	transport := NewCachingTransport(server.Client().Transport, time.Hour, nil)
	client := newTestClient(server.URL, &http.Client{Transport: transport})

	first, err := client.FetchAlmanac(context.Background(), testDate)
	require.NoError(t, err)
	second, err := client.FetchAlmanac(context.Background(), testDate)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCachingTransportSkipsFailedEnvelopes(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"code":230,"msg":"key错误或为空"}`))
	}))
	t.Cleanup(server.Close)

	transport := NewCachingTransport(server.Client().Transport, time.Hour, nil)
	client := newTestClient(server.URL, &http.Client{Transport: transport})

	for i := 0; i < 2; i++ {
		_, err := client.FetchAlmanac(context.Background(), testDate)
		var dataErr *domain.UpstreamDataError
		require.ErrorAs(t, err, &dataErr)
		assert.Equal(t, 230, dataErr.Code)
	}

	assert.Equal(t, int32(2), calls.Load())
}

func TestCachingTransportExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(starPayload))
	}))
	t.Cleanup(server.Close)

	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	clock := ports.ClockFunc(func() time.Time { return now })
	transport := NewCachingTransport(server.Client().Transport, time.Hour, clock)
	client := newTestClient(server.URL, &http.Client{Transport: transport})

	_, err := client.FetchConstellation(context.Background(), domain.SignAries, testDate)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = client.FetchConstellation(context.Background(), domain.SignAries, testDate)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestCachingTransportScopesEntriesToUTCDay(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(starPayload))
	}))
	t.Cleanup(server.Close)

	now := time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC)
	clock := ports.ClockFunc(func() time.Time { return now })
	transport := NewCachingTransport(server.Client().Transport, time.Hour, clock)
	client := newTestClient(server.URL, &http.Client{Transport: transport})

	_, err := client.FetchConstellation(context.Background(), domain.SignAries, testDate)
	require.NoError(t, err)

	now = now.Add(40 * time.Minute)
	for i := 0; i < 2; i++ {
		_, err = client.FetchConstellation(context.Background(), domain.SignAries, testDate)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), calls.Load())
}

func TestCachingTransportPassesThroughNonGet(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"code":200,"result":{}}`)
	}))
	t.Cleanup(server.Close)

	httpClient := &http.Client{Transport: NewCachingTransport(server.Client().Transport, time.Hour, nil)}
	for i := 0; i < 2; i++ {
		resp, err := httpClient.Post(server.URL, "application/json", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, int32(2), calls.Load())
}

func TestSuccessfulEnvelope(t *testing.T) {
	assert.True(t, SuccessfulEnvelope(http.StatusOK, []byte(`{"code":200,"result":{}}`)))
	assert.False(t, SuccessfulEnvelope(http.StatusOK, []byte(`{"code":150}`)))
	assert.False(t, SuccessfulEnvelope(http.StatusOK, []byte(`not json`)))
	assert.False(t, SuccessfulEnvelope(http.StatusBadGateway, []byte(`{"code":200}`)))
}
