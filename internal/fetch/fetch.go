// Package fetch issues HTTP requests against judicial portals with three
// escalating strategies: a single browser-like GET, a rotation over distinct
// user agents, and bounded retries over fresh sessions. It knows nothing
// about document semantics; callers classify and extract.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Strategy selects how a URL is fetched.
type Strategy int

const (
	// Plain issues one GET with the default browser header set.
	Plain Strategy = iota
	// RotatingUserAgent retries the GET across distinct user agents and
	// returns on the first HTTP 200.
	RotatingUserAgent
	// SessionRetry retries with a fresh client (new cookies, new
	// connections) between attempts.
	SessionRetry
)

func (s Strategy) String() string {
	switch s {
	case Plain:
		return "plain"
	case RotatingUserAgent:
		return "rotating-user-agent"
	case SessionRetry:
		return "session-retry"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Strategies is the escalation order used by the retriever.
var Strategies = []Strategy{Plain, RotatingUserAgent, SessionRetry}

// Result is a raw fetched response. Consumed immediately by classification;
// never retained.
type Result struct {
	StatusCode  int
	Header      http.Header
	Body        []byte
	ContentType string
}

// Client wraps http.Client with per-request timeouts, bounded retries and
// the strategy dispatch. The zero value is usable.
type Client struct {
	// HTTPClient, when set, is the base client for Plain and
	// RotatingUserAgent requests. SessionRetry always builds fresh clients.
	HTTPClient *http.Client
	// PerRequestTimeout bounds each request. Default 25s.
	PerRequestTimeout time.Duration
	// MaxSessionRetries includes the initial attempt. Default 3.
	MaxSessionRetries int
	// RetryDelay is the fixed sleep between session-retry attempts.
	// Default 2s.
	RetryDelay time.Duration
	// RedirectMaxHops caps redirect following. Default 5.
	RedirectMaxHops int
	// InsecureSkipVerify relaxes TLS verification. Some legacy portals run
	// misconfigured chains; this is an operational concession, off by
	// default.
	InsecureSkipVerify bool
	// MaxBodyBytes caps response reads. Default 8 MiB.
	MaxBodyBytes int64
}

// Do fetches url with the given strategy.
func (c *Client) Do(ctx context.Context, rawURL string, strategy Strategy) (*Result, error) {
	switch strategy {
	case Plain:
		return c.plain(ctx, rawURL)
	case RotatingUserAgent:
		return c.rotating(ctx, rawURL)
	case SessionRetry:
		return c.sessionRetry(ctx, rawURL)
	default:
		return nil, fmt.Errorf("fetch: unknown strategy %v", strategy)
	}
}

// Head issues a HEAD request with the default profile and reports status and
// content type. Used as a cheap content-type pre-check before a full GET.
func (c *Client) Head(ctx context.Context, rawURL string) (int, string, error) {
	if err := validateURL(rawURL); err != nil {
		return 0, "", err
	}
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, "", fmt.Errorf("new request: %w", err)
	}
	defaultProfile.apply(req)

	resp, err := c.baseClient().Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Content-Type"), nil
}

func (c *Client) plain(ctx context.Context, rawURL string) (*Result, error) {
	res, err := c.get(ctx, rawURL, defaultProfile, c.baseClient())
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d for %s", res.StatusCode, rawURL)
	}
	return res, nil
}

func (c *Client) rotating(ctx context.Context, rawURL string) (*Result, error) {
	client := c.baseClient()
	var lastErr error
	for i, profile := range rotationProfiles {
		res, err := c.get(ctx, rawURL, profile, client)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Debug().Err(err).Int("agent", i+1).Str("url", rawURL).Msg("user agent attempt failed")
			lastErr = err
			continue
		}
		if res.StatusCode == http.StatusOK {
			return res, nil
		}
		log.Debug().Int("agent", i+1).Int("status", res.StatusCode).Str("url", rawURL).Msg("user agent rejected")
		lastErr = fmt.Errorf("status %d", res.StatusCode)
	}
	if lastErr == nil {
		lastErr = errors.New("no user agents configured")
	}
	return nil, fmt.Errorf("all %d user agents failed for %s: %w", len(rotationProfiles), rawURL, lastErr)
}

func (c *Client) sessionRetry(ctx context.Context, rawURL string) (*Result, error) {
	attempts := c.MaxSessionRetries
	if attempts <= 0 {
		attempts = 3
	}
	client := c.baseClient()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.retryDelay()); err != nil {
				return nil, err
			}
			// Fresh cookies and connections; some portals poison a session
			// after the first refusal.
			client = c.freshSession()
		}
		res, err := c.get(ctx, rawURL, defaultProfile, client)
		if err == nil && res.StatusCode >= 200 && res.StatusCode <= 299 {
			return res, nil
		}
		if err == nil {
			err = fmt.Errorf("unexpected status %d", res.StatusCode)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Debug().Err(err).Int("attempt", attempt+1).Str("url", rawURL).Msg("session retry failed")
		lastErr = err
	}
	return nil, fmt.Errorf("session retry exhausted after %d attempts for %s: %w", attempts, rawURL, lastErr)
}

// get performs a single GET. Non-2xx statuses are returned in the Result,
// not as errors; strategies decide how to treat them.
func (c *Client) get(ctx context.Context, rawURL string, profile Profile, client *http.Client) (*Result, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	profile.apply(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = 8 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Result{
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.PerRequestTimeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Client) retryDelay() time.Duration {
	if c.RetryDelay > 0 {
		return c.RetryDelay
	}
	return 2 * time.Second
}

func (c *Client) baseClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach the redirect policy without mutating the caller's
		// client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return c.freshSession()
}

// freshSession builds a client with its own transport and cookie jar.
func (c *Client) freshSession() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if c.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Transport:     transport,
		Jar:           jar,
		CheckRedirect: c.checkRedirectFunc(),
	}
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	return nil
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
