// internal/adapters/providers/client.go
package providers

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"trip_planner/internal/adapters/observability"
)

var (
	ErrNotFound      = errors.New("provider: not found")
	ErrUnauthorized  = errors.New("provider: unauthorized")
	ErrForbidden     = errors.New("provider: forbidden")
	ErrNoCredentials = errors.New("provider: credentials not configured")
	ErrMalformed     = errors.New("provider: malformed payload")
)

const maxAttempts = 4

// Client is a rate-limited JSON client shared by the provider adapters.
// Headers are sent on every request.
type Client struct {
	service string
	base    string
	hc      *http.Client
	rl      *rate.Limiter
	headers http.Header
}

func NewClient(service, base string, rps int, headers http.Header) *Client {
	if rps <= 0 {
		rps = 5
	}
	if headers == nil {
		headers = http.Header{}
	}
	return &Client{
		service: service,
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 20 * time.Second},
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		headers: headers,
	}
}

// Get issues GET base+path?q and decodes the JSON body into out.
// extra headers are merged over the client defaults.
func (c *Client) Get(ctx context.Context, path string, q url.Values, extra http.Header, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return c.do(ctx, path, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		c.setHeaders(req, extra)
		return req, nil
	}, out)
}

// PostForm sends an application/x-www-form-urlencoded body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	body := form.Encode()
	return c.do(ctx, path, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		c.setHeaders(req, nil)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, out)
}

// Open issues a rate-limited GET and hands back the raw body on 200.
// There is no retry; the caller closes the body.
func (c *Client) Open(ctx context.Context, path string, q url.Values) (io.ReadCloser, string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, "", err
	}
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	c.setHeaders(req, http.Header{"Accept": {"*/*"}})

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(c.service, path, 0, time.Since(start))
		return nil, "", err
	}
	observability.ObserveExternal(c.service, path, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, resp.Header.Get("Content-Type"), nil
	case http.StatusNotFound, http.StatusBadRequest:
		err = ErrNotFound
	case http.StatusUnauthorized:
		err = ErrUnauthorized
	case http.StatusForbidden:
		err = ErrForbidden
	default:
		err = fmt.Errorf("%s: bad status %d", c.service, resp.StatusCode)
	}
	resp.Body.Close()
	return nil, "", err
}

func (c *Client) setHeaders(req *http.Request, extra http.Header) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "trip-planner/1.0")
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
}

// do runs newReq with client-side rate limiting and retries on 429 and
// transient 5xx, honoring Retry-After when provided. A body that is not
// valid JSON for out is reported as ErrMalformed.
func (c *Client) do(ctx context.Context, endpoint string, newReq func() (*http.Request, error), out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		// build a fresh request each attempt
		req, err := newReq()
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(c.service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(c.service, endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%w: %s %s: %v", ErrMalformed, c.service, endpoint, err)
			}
			return nil

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("%s: remote %d", c.service, resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("%s: bad status %d: %s", c.service, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
