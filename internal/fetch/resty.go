package fetch

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
)

type RestyGetter struct {
	http *resty.Client
}

func NewRestyGetter(timeout time.Duration, userAgent string) *RestyGetter {
	client := resty.New()
	client.SetHeader("User-Agent", userAgent)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(MaxHops))
	client.SetTimeout(timeout)
	return &RestyGetter{http: client}
}

func (g *RestyGetter) Get(ctx context.Context, rawURL string) (*Page, error) {
	res, err := g.http.R().
		SetContext(ctx).
		Get(rawURL)
	if err != nil {
		return nil, err
	}

	return &Page{
		URL:        rawURL,
		StatusCode: res.StatusCode(),
		Body:       toUTF8(res.Body(), res.Header().Get("Content-Type")),
	}, nil
}

// toUTF8 decodes body using the charset from contentType or the document
// itself. Undecodable bodies are returned unchanged.
func toUTF8(body []byte, contentType string) []byte {
	utf8Reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		return body
	}
	return decoded
}
