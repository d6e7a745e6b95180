package hitokoto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bnema/daily-fortune/internal/domain"
	"github.com/bnema/daily-fortune/internal/ports"
)

const (
	DefaultMirrorTimeout = 5 * time.Second
	maxResponseBytes     = 64 << 10
)

var DefaultMirrors = []string{
	"https://v1.hitokoto.cn/",
	"https://international.v1.hitokoto.cn/",
}

var errNoMirrors = errors.New("no hitokoto mirrors configured")

// Client fetches a sentence from the first mirror that answers.
type Client struct {
	Mirrors       []string
	HTTPClient    *http.Client
	MirrorTimeout time.Duration
}

var _ ports.QuoteProvider = (*Client)(nil)

type payload struct {
	Hitokoto string `json:"hitokoto"`
	From     string `json:"from"`
	FromWho  string `json:"from_who"`
}

func (c Client) FetchQuote(ctx context.Context) (domain.Quote, error) {
	mirrors := c.Mirrors
	if len(mirrors) == 0 {
		mirrors = DefaultMirrors
	}
	if len(mirrors) == 0 {
		return domain.Quote{}, errNoMirrors
	}

	var errs []error
	for _, mirror := range mirrors {
		if err := ctx.Err(); err != nil {
			return domain.Quote{}, err
		}

		quote, err := c.fetchMirror(ctx, mirror)
		if err == nil {
			return quote, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", mirror, err))
	}

	return domain.Quote{}, fmt.Errorf("fetch quote: %w", errors.Join(errs...))
}

func (c Client) fetchMirror(ctx context.Context, mirror string) (domain.Quote, error) {
	timeout := c.MirrorTimeout
	if timeout <= 0 {
		timeout = DefaultMirrorTimeout
	}
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, mirror, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("create quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return domain.Quote{}, &domain.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Quote{}, &domain.UpstreamHTTPError{StatusCode: resp.StatusCode}
	}

	var body payload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return domain.Quote{}, &domain.UpstreamDataError{Message: fmt.Sprintf("decode quote: %v", err)}
	}
	if body.Hitokoto == "" {
		return domain.Quote{}, &domain.UpstreamDataError{Message: "quote text is empty"}
	}

	return domain.Quote{Text: body.Hitokoto, From: body.From, FromWho: body.FromWho}, nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
