package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	DatabaseFilePath          string
	DatabaseMaxRetries        int
	Hostname                  string

	// External bibliographic source settings.
	GoodreadsBaseURL   string
	GoogleBooksBaseURL string
	HTTPTimeout        time.Duration
	UserAgent          string

	// Per-request jitter delay bounds. Every search and detail fetch sleeps
	// a random duration in this range first so a run never bursts traffic
	// against the source.
	SearchDelayMin time.Duration
	SearchDelayMax time.Duration

	// Retry budgets. Search requests get a small transport budget; detail
	// pages get a much larger one because their markup intermittently comes
	// back without the content columns.
	SearchRetryCount int
	DetailRetryCount int

	// Maximum number of result pages followed for an author-only search.
	SearchPageLimit int
}

const environmentENV = "ENVIRONMENT"

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        5,
		Hostname:                  hostname,

		GoodreadsBaseURL:   "https://www.goodreads.com",
		GoogleBooksBaseURL: "https://www.googleapis.com/books/v1/volumes",
		HTTPTimeout:        30 * time.Second,
		UserAgent:          "saga-importer",

		SearchDelayMin: 100 * time.Millisecond,
		SearchDelayMax: 250 * time.Millisecond,

		SearchRetryCount: 5,
		DetailRetryCount: 20,
		SearchPageLimit:  5,
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	return cfg, nil
}
