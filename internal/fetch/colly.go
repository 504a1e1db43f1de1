package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly"
)

// CollyGetter drives a synchronous collector. Error statuses are passed
// through as pages so Client decides what counts as failure.
type CollyGetter struct {
	collector *colly.Collector
	transport *ctxTransport

	// one request at a time: the transport carries a single context
	mu sync.Mutex
}

func NewCollyGetter(timeout time.Duration, userAgent string) *CollyGetter {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.SetRequestTimeout(timeout)
	c.RedirectHandler = func(req *http.Request, via []*http.Request) error {
		if len(via) >= MaxHops {
			return fmt.Errorf("stopped after %d redirects", MaxHops)
		}
		return nil
	}

	transport := &ctxTransport{base: http.DefaultTransport}
	c.WithTransport(transport)
	return &CollyGetter{collector: c, transport: transport}
}

func (g *CollyGetter) Get(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.transport.set(ctx)
	defer g.transport.set(nil)

	// a clone per request keeps callbacks from piling up on the shared collector
	c := g.collector.Clone()
	c.AllowURLRevisit = true
	c.ParseHTTPErrorResponse = true

	var page *Page
	c.OnResponse(func(r *colly.Response) {
		body := r.Body
		contentType := r.Headers.Get("Content-Type")
		// colly only transcodes bodies whose charset is declared
		if !strings.Contains(strings.ToLower(contentType), "charset") {
			body = toUTF8(body, contentType)
		}
		page = &Page{
			URL:        rawURL,
			StatusCode: r.StatusCode,
			Body:       body,
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 && page == nil {
			page = &Page{URL: rawURL, StatusCode: r.StatusCode, Body: r.Body}
		}
	})

	err := c.Visit(rawURL)
	if page != nil {
		return page, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no response for %s", rawURL)
}

// ctxTransport attaches the context of the request in flight, so cancelling
// it aborts the connection instead of waiting out the collector timeout.
type ctxTransport struct {
	base http.RoundTripper

	mu  sync.Mutex
	ctx context.Context
}

func (t *ctxTransport) set(ctx context.Context) {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()
}

func (t *ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	ctx := t.ctx
	t.mu.Unlock()
	if ctx == nil {
		return t.base.RoundTrip(req)
	}

	// keep the client timeout on req.Context() and add ctx on top of it
	reqCtx, cancel := context.WithCancel(req.Context())
	stop := context.AfterFunc(ctx, cancel)
	release := func() {
		stop()
		cancel()
	}

	res, err := t.base.RoundTrip(req.WithContext(reqCtx))
	if err != nil {
		release()
		return nil, err
	}
	res.Body = &releaseBody{ReadCloser: res.Body, release: release}
	return res, nil
}

type releaseBody struct {
	io.ReadCloser
	release func()
}

func (b *releaseBody) Close() error {
	err := b.ReadCloser.Close()
	b.release()
	return err
}
