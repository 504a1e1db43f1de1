package app

import (
	"bytes"
	"context"
	"fmt"

	urlqueue "book_scraper/internal/url_queue"

	"github.com/PuerkitoBio/goquery"
)

// Lister turns a catalog page index into the product addresses listed on it.
type Lister struct {
	client   Fetcher
	baseURL  string
	template string
}

func NewLister(client Fetcher, baseURL, template string) *Lister {
	return &Lister{client: client, baseURL: baseURL, template: template}
}

func (l *Lister) PageURL(index int) (string, error) {
	if index < 1 {
		return "", fmt.Errorf("%w: %d", ErrInvalidPage, index)
	}
	return urlqueue.PageURL(l.baseURL, l.template, index)
}

func (l *Lister) ListProductAddresses(ctx context.Context, index int) ([]string, error) {
	pageURL, err := l.PageURL(index)
	if err != nil {
		return nil, err
	}

	page, err := l.client.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return ParseListing(pageURL, l.baseURL, page.Body)
}

// ParseListing returns the links wrapped by every .image_container in document
// order, resolved against baseURL. Duplicates are kept.
func ParseListing(pageURL, baseURL string, body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ExtractionError{URL: pageURL, Field: "document", Err: err}
	}

	addresses := []string{}
	var resolveErr error
	doc.Find(".image_container").Each(func(_ int, container *goquery.Selection) {
		container.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			if resolveErr != nil {
				return
			}
			href, _ := a.Attr("href")
			address, err := urlqueue.ResolveReference(baseURL, href)
			if err != nil {
				resolveErr = &ExtractionError{URL: pageURL, Field: "product link", Err: err}
				return
			}
			addresses = append(addresses, address)
		})
	})
	if resolveErr != nil {
		return nil, resolveErr
	}

	return addresses, nil
}
