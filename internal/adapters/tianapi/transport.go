package tianapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bnema/daily-fortune/internal/adapters/cache/memory"
	"github.com/bnema/daily-fortune/internal/ports"
)

type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// CachingTransport answers repeated GET requests for the same URL on the same
// UTC day from a cache instead of the network. Only responses accepted by
// Cacheable are stored. A zero CachingTransport passes every request through.
type CachingTransport struct {
	Base      http.RoundTripper
	Cacheable func(status int, body []byte) bool

	cache ports.Cache[cachedResponse]
	clock ports.Clock
}

// NewCachingTransport wraps base with a ttl-bounded response cache. A nil base
// means http.DefaultTransport.
func NewCachingTransport(base http.RoundTripper, ttl time.Duration, clock ports.Clock) *CachingTransport {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &CachingTransport{
		Base:      base,
		Cacheable: SuccessfulEnvelope,
		cache:     memory.NewStore[cachedResponse](ttl, clock),
		clock:     clock,
	}
}

func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.cache == nil {
		return t.base().RoundTrip(req)
	}

	// /star/index carries no date; the UTC day scopes the entry.
	key := t.clock.Now().UTC().Format(dateLayout) + " " + req.URL.String()
	if cached, ok := t.cache.Get(key); ok {
		return cached.response(req), nil
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	entry := cachedResponse{status: resp.StatusCode, header: resp.Header.Clone(), body: body}
	if t.cacheable(resp.StatusCode, body) {
		t.cache.Set(key, entry)
	}

	return entry.response(req), nil
}

func (t *CachingTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *CachingTransport) cacheable(status int, body []byte) bool {
	if t.Cacheable == nil {
		return status == http.StatusOK
	}
	return t.Cacheable(status, body)
}

// SuccessfulEnvelope accepts HTTP 200 responses whose JSON envelope carries
// the success code, so quota and key errors are never replayed.
func SuccessfulEnvelope(status int, body []byte) bool {
	if status != http.StatusOK {
		return false
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return false
	}
	return env.Code == successCode
}

func (c cachedResponse) response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", c.status, http.StatusText(c.status)),
		StatusCode:    c.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        c.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(c.body)),
		ContentLength: int64(len(c.body)),
		Request:       req,
	}
}
