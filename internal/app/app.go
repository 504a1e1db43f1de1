package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"book_scraper/internal/config"
	"book_scraper/internal/db"
	"book_scraper/internal/fetch"
	"book_scraper/internal/models"
	urlqueue "book_scraper/internal/url_queue"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// BookSpider walks catalog pages [PageStart, PageEnd) one product at a time
// and appends every product it reads to the store. The first error ends the
// run.
type BookSpider struct {
	config    *config.ScraperConfig
	store     *db.Store
	lister    *Lister
	extractor *Extractor
	queue     *urlqueue.URLQueue
	log       *slog.Logger
}

func NewBookSpider(cfg *config.ScraperConfig, log *slog.Logger) (*BookSpider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	getter, err := newGetter(cfg.Logic)
	if err != nil {
		return nil, err
	}
	client := fetch.NewClient(getter, fetch.Options{
		UserAgent:     cfg.Logic.UserAgent,
		RespectRobots: cfg.Logic.RespectRobots,
		Delay:         time.Duration(cfg.Logic.DelayMS) * time.Millisecond,
	})

	return &BookSpider{
		config:    cfg,
		store:     db.NewStore(cfg.DB.Path),
		lister:    NewLister(client, cfg.Source.BaseURL, cfg.Source.PageTemplate),
		extractor: NewExtractor(client),
		queue:     urlqueue.NewURLQueue(cfg.Source.BaseURL),
		log:       log,
	}, nil
}

func newGetter(logic config.LogicConfig) (fetch.Getter, error) {
	timeout := time.Duration(logic.TimeoutSec) * time.Second
	switch logic.Engine {
	case config.EngineResty:
		return fetch.NewRestyGetter(timeout, logic.UserAgent), nil
	case config.EngineColly:
		return fetch.NewCollyGetter(timeout, logic.UserAgent), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", config.ErrInvalidConfig, logic.Engine)
	}
}

func (s *BookSpider) Store() *db.Store { return s.store }

// Run scrapes every configured page. The returned stats are valid even when
// err is not nil and count what was stored before the failure.
func (s *BookSpider) Run(ctx context.Context) (*models.RunStats, error) {
	logic := s.config.Logic
	s.log.InfoContext(ctx, "starting scrape",
		"db", s.store.Path(),
		"pages", fmt.Sprintf("[%d, %d)", logic.PageStart, logic.PageEnd),
		"delay_ms", logic.DelayMS,
		"engine", logic.Engine,
	)

	stats := &models.RunStats{}
	s.queue = urlqueue.NewURLQueue(s.config.Source.BaseURL)

	created, err := s.store.EnsureSchema(ctx)
	if err != nil {
		return stats, err
	}
	if created {
		s.log.InfoContext(ctx, "table created", "table", db.TableName)
	} else {
		s.log.DebugContext(ctx, "table already exists", "table", db.TableName)
	}

	for pageIndex := logic.PageStart; pageIndex < logic.PageEnd; pageIndex++ {
		addresses, err := s.lister.ListProductAddresses(ctx, pageIndex)
		if err != nil {
			return stats, fmt.Errorf("list page %d: %w", pageIndex, err)
		}
		s.queue.AddAll(addresses)
		stats.Pages++
		s.log.DebugContext(ctx, "page listed", "page", pageIndex, "products", len(addresses))

		if err := s.drain(ctx, stats); err != nil {
			return stats, err
		}
	}

	s.log.InfoContext(ctx, "done scraping", "pages", stats.Pages, "records", stats.Records)
	return stats, nil
}

func (s *BookSpider) drain(ctx context.Context, stats *models.RunStats) error {
	for {
		address, ok := s.queue.Get()
		if !ok {
			return nil
		}

		record, err := s.extractor.ExtractProduct(ctx, address)
		if err != nil {
			return fmt.Errorf("extract %s: %w", address, err)
		}
		rowID, err := s.store.Append(ctx, record)
		if err != nil {
			return fmt.Errorf("append %s: %w", address, err)
		}

		stats.Records++
		stats.LastRow = rowID
		s.log.InfoContext(ctx, "row appended", "row_id", rowID, "title", record.Title, "price", record.Price)
	}
}
