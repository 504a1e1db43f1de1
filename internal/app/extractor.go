package app

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"book_scraper/internal/models"

	"github.com/PuerkitoBio/goquery"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNonNumeric = regexp.MustCompile(`[^0-9.]`)
	reDigit      = regexp.MustCompile(`[0-9]`)

	errNoDigits = errors.New("no digits")
)

const (
	productSelector = ".product_main"
	titleSelector   = "h1"
	priceSelector   = ".price_color"
	stockSelector   = ".availability"
)

// Extractor fetches a product page and reads a ProductRecord out of it.
type Extractor struct {
	client Fetcher
	now    func() time.Time
}

func NewExtractor(client Fetcher) *Extractor {
	return &Extractor{client: client, now: time.Now}
}

func (e *Extractor) ExtractProduct(ctx context.Context, address string) (*models.ProductRecord, error) {
	page, err := e.client.Fetch(ctx, address)
	if err != nil {
		return nil, err
	}
	return ParseProduct(address, page.Body, e.now())
}

// ParseProduct reads title, price and stock status from a product page body.
// A missing element is an ExtractionError, an unreadable price a ParseError.
func ParseProduct(address string, body []byte, observedAt time.Time) (*models.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ExtractionError{URL: address, Field: "document", Err: err}
	}

	product := doc.Find(productSelector).First()
	if product.Length() == 0 {
		return nil, &ExtractionError{URL: address, Field: "product container"}
	}

	title, err := requiredText(address, product, titleSelector, "title")
	if err != nil {
		return nil, err
	}
	rawPrice, err := requiredText(address, product, priceSelector, "price")
	if err != nil {
		return nil, err
	}
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return nil, err
	}
	stock, err := requiredText(address, product, stockSelector, "stock status")
	if err != nil {
		return nil, err
	}

	return &models.ProductRecord{
		Address:     address,
		Title:       title,
		Price:       price,
		StockStatus: stock,
		ObservedAt:  observedAt.Format(models.DateLayout),
	}, nil
}

func requiredText(address string, scope *goquery.Selection, selector, field string) (string, error) {
	sel := scope.Find(selector).First()
	if sel.Length() == 0 {
		return "", &ExtractionError{URL: address, Field: field}
	}
	text := normalizeText(sel.Text())
	if text == "" {
		return "", &ExtractionError{URL: address, Field: field}
	}
	return text, nil
}

func normalizeText(text string) string {
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ParsePrice keeps only digits and '.' from raw and parses the rest, so
// currency symbols, mis-decoded bytes and thousands commas all drop out:
// "£1,234.56" is 1234.56.
func ParsePrice(raw string) (float64, error) {
	if !reDigit.MatchString(raw) {
		return 0, &ParseError{Field: "price", Raw: raw, Err: errNoDigits}
	}
	amount := reNonNumeric.ReplaceAllString(raw, "")
	price, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, &ParseError{Field: "price", Raw: raw, Err: err}
	}
	return price, nil
}
