package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	// DBPathEnv overrides db.path.
	DBPathEnv = "BOOKSCRAPER_DB_PATH"
	// DelayEnv overrides logic.delay_ms.
	DelayEnv = "BOOKSCRAPER_DELAY_MS"
	// EngineEnv overrides logic.engine.
	EngineEnv = "BOOKSCRAPER_ENGINE"
	// VerboseEnv overrides verbose.
	VerboseEnv = "BOOKSCRAPER_VERBOSE"

	DefaultEnvFilePath = ".env"

	EngineResty = "resty"
	EngineColly = "colly"
)

var ErrInvalidConfig = errors.New("invalid config")

type SourceConfig struct {
	BaseURL      string `yaml:"base_url"`
	PageTemplate string `yaml:"page_template"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogicConfig struct {
	DelayMS       int    `yaml:"delay_ms"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	PageStart     int    `yaml:"page_start"`
	PageEnd       int    `yaml:"page_end"`
	UserAgent     string `yaml:"user_agent"`
	Engine        string `yaml:"engine"`
	RespectRobots bool   `yaml:"respect_robots"`
}

type ScraperConfig struct {
	DB      DBConfig     `yaml:"db"`
	Source  SourceConfig `yaml:"source"`
	Logic   LogicConfig  `yaml:"logic"`
	Verbose bool         `yaml:"verbose"`
}

// Default scrapes pages 1..49 of books.toscrape.com with five
// seconds between requests.
func Default() *ScraperConfig {
	return &ScraperConfig{
		DB: DBConfig{Path: "books.db"},
		Source: SourceConfig{
			BaseURL:      "http://books.toscrape.com/catalogue/",
			PageTemplate: "page-%d.html",
		},
		Logic: LogicConfig{
			DelayMS:       5000,
			TimeoutSec:    30,
			PageStart:     1,
			PageEnd:       50,
			UserAgent:     "Mozilla/5.0 (compatible; BookScraper/1.0)",
			Engine:        EngineResty,
			RespectRobots: true,
		},
		Verbose: true,
	}
}

// LoadConfig reads the YAML file at path on top of Default. A missing file is
// not an error.
func LoadConfig(path string) (*ScraperConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("config file not found, using defaults", "path", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnvFile loads environment variables from the given .env files.
func ApplyEnvFile(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with any BOOKSCRAPER_* variables that are set.
func (c *ScraperConfig) ApplyEnv() error {
	if v := os.Getenv(DBPathEnv); v != "" {
		c.DB.Path = v
	}
	if v := os.Getenv(DelayEnv); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, DelayEnv, v, err)
		}
		c.Logic.DelayMS = ms
	}
	if v := os.Getenv(EngineEnv); v != "" {
		c.Logic.Engine = v
	}
	c.Verbose = getEnvAsBool(VerboseEnv, c.Verbose)
	return nil
}

func (c *ScraperConfig) Validate() error {
	switch {
	case c.DB.Path == "":
		return fmt.Errorf("%w: db.path is empty", ErrInvalidConfig)
	case c.Source.BaseURL == "":
		return fmt.Errorf("%w: source.base_url is empty", ErrInvalidConfig)
	case strings.Count(c.Source.PageTemplate, "%d") != 1:
		return fmt.Errorf("%w: source.page_template %q must contain exactly one %%d", ErrInvalidConfig, c.Source.PageTemplate)
	case c.Logic.PageStart < 1:
		return fmt.Errorf("%w: logic.page_start must be positive, got %d", ErrInvalidConfig, c.Logic.PageStart)
	case c.Logic.PageEnd < c.Logic.PageStart:
		return fmt.Errorf("%w: logic.page_end %d is before page_start %d", ErrInvalidConfig, c.Logic.PageEnd, c.Logic.PageStart)
	case c.Logic.DelayMS < 0:
		return fmt.Errorf("%w: logic.delay_ms is negative", ErrInvalidConfig)
	case c.Logic.TimeoutSec <= 0:
		return fmt.Errorf("%w: logic.timeout_sec must be positive", ErrInvalidConfig)
	}
	switch c.Logic.Engine {
	case EngineResty, EngineColly:
	default:
		return fmt.Errorf("%w: unknown logic.engine %q", ErrInvalidConfig, c.Logic.Engine)
	}
	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}
