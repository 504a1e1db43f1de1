package models

import (
	"errors"
	"fmt"
)

// DateLayout is the month/day/year layout of ProductRecord.ObservedAt.
const DateLayout = "01/02/06"

var ErrInvalidRecord = errors.New("invalid product record")

// ProductRecord is one observation of a product page. It is never mutated
// after extraction and is stored append-only.
type ProductRecord struct {
	Address     string  `yaml:"address"`
	Title       string  `yaml:"title"`
	Price       float64 `yaml:"price"`
	StockStatus string  `yaml:"stock_status"`
	ObservedAt  string  `yaml:"observed_at"`
}

func (r *ProductRecord) Validate() error {
	switch {
	case r.Address == "":
		return fmt.Errorf("%w: empty address", ErrInvalidRecord)
	case r.Title == "":
		return fmt.Errorf("%w: empty title", ErrInvalidRecord)
	case r.Price < 0:
		return fmt.Errorf("%w: negative price %v", ErrInvalidRecord, r.Price)
	case r.StockStatus == "":
		return fmt.Errorf("%w: empty stock status", ErrInvalidRecord)
	case r.ObservedAt == "":
		return fmt.Errorf("%w: empty observed-at date", ErrInvalidRecord)
	}
	return nil
}

// RunStats summarizes a finished (or aborted) scrape run.
type RunStats struct {
	Pages   int
	Records int
	LastRow int64
}
