// Package fetch issues the GET requests the scraper needs. Engines implement
// Getter and only move bytes; Client layers the robots.txt gate and the
// "anything but 200 is fatal" policy on top.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// MaxHops bounds redirect chains in every engine.
const MaxHops = 15

var (
	ErrDisallowed = errors.New("disallowed by robots.txt")
	ErrStatus     = errors.New("unexpected status")
)

type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

type Getter interface {
	Get(ctx context.Context, rawURL string) (*Page, error)
}

// FetchError reports a failed fetch: a non-200 status, a transport error or a
// robots.txt refusal. It is never retried.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type Options struct {
	UserAgent     string
	RespectRobots bool
	// Delay is the minimum spacing between two outbound requests, robots.txt
	// included. Zero disables spacing.
	Delay time.Duration
}

type Client struct {
	getter  Getter
	opts    Options
	limiter *rate.Limiter

	mu     sync.Mutex
	robots map[string]*robotstxt.Group
}

func NewClient(getter Getter, opts Options) *Client {
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	return &Client{
		getter:  getter,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		robots:  make(map[string]*robotstxt.Group),
	}
}

// Fetch GETs rawURL and returns the page only on HTTP 200. It blocks until
// the configured delay has passed since the previous request.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("bad url: %v", err)}
	}

	if c.opts.RespectRobots {
		if group := c.robotsGroup(ctx, u); group != nil && !group.Test(u.Path) {
			return nil, &FetchError{URL: rawURL, Err: ErrDisallowed}
		}
	}

	page, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if page.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, StatusCode: page.StatusCode, Err: ErrStatus}
	}
	return page, nil
}

// robotsGroup loads robots.txt once per host. Failures to load it are logged
// and treated as "allow everything".
func (c *Client) robotsGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	c.mu.Lock()
	defer c.mu.Unlock()

	if group, ok := c.robots[u.Host]; ok {
		return group
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	var group *robotstxt.Group

	page, err := c.get(ctx, robotsURL)
	if err != nil && (errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil) {
		// left uncached so a later fetch retries it
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to load robots.txt, ignoring", "url", robotsURL, "err", err)
	} else if data, err := robotstxt.FromStatusAndBytes(page.StatusCode, page.Body); err != nil {
		slog.WarnContext(ctx, "failed to parse robots.txt, ignoring", "url", robotsURL, "err", err)
	} else {
		group = data.FindGroup(c.opts.UserAgent)
		slog.DebugContext(ctx, "robots.txt loaded", "url", robotsURL)
	}

	c.robots[u.Host] = group
	return group
}

func (c *Client) get(ctx context.Context, rawURL string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// the wait would outlast the deadline
		return nil, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return c.getter.Get(ctx, rawURL)
}
