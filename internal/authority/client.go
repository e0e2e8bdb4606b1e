// Package authority provides the shared HTTP client used by validators that
// contact external authorities, plus the adapters that project authority
// records (CrossRef, Entrez, the handle system) onto engine datatypes as
// DataWrappers.
package authority

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/metatool-io/metatool/internal/plugin"
)

const (
	// maxResponseBytes bounds how much of an authority response is read.
	maxResponseBytes = 4 << 20

	// Outbound request budget. Authorities like Entrez throttle
	// aggressively; a modest client-side bucket keeps lookups polite
	// without a retry or cache layer.
	requestsPerSecond = 5
	burstSize         = 5
)

// ErrTimeout reports that an authority call exceeded its hard deadline.
var ErrTimeout = errors.New("authority request timed out")

// Doer abstracts the HTTP transport so tests can inject a fake.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is the portion of an authority reply the adapters care about.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client performs best-effort GETs against authority endpoints: one hard
// per-call deadline, a token-bucket rate limit, no retry, no cache.
type Client struct {
	doer      Doer
	limiter   *rate.Limiter
	timeout   time.Duration
	userAgent string
}

// NewClient builds a client from the options. A nil doer uses a plain
// http.Client; connection pooling stays whatever net/http provides.
func NewClient(doer Doer, opts plugin.Options) *Client {
	opts = opts.Normalize()

	if doer == nil {
		doer = &http.Client{}
	}

	return &Client{
		doer:      doer,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		timeout:   opts.HTTPTimeout,
		userAgent: opts.UserAgent,
	}
}

// Get fetches the URL with the given Accept header under the per-call
// deadline. Deadline expiry is reported as ErrTimeout so callers can phrase
// the warning; any other transport failure is returned as-is. Non-2xx
// statuses are not errors here; classification is the caller's concern.
func (c *Client) Get(ctx context.Context, url, accept string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransportErr(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build authority request: %w", err)
	}

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func classifyTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	return err
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ClientError reports a 4xx status: the authority explicitly denied the
// lookup, which callers surface as a validation error.
func (r *Response) ClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// ServerError reports a 5xx status: the authority itself is unwell, which
// callers surface as a warning, never an error.
func (r *Response) ServerError() bool {
	return r.StatusCode >= 500
}
