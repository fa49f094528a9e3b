package config

import "os"

func loadProductionConfig(cfg *Config) {
	cfg.DatabaseFilePath = "/data/catalog.sqlite"

	if path := os.Getenv("DATABASE_FILE_PATH"); path != "" {
		cfg.DatabaseFilePath = path
	}
	if ua := os.Getenv("LOOKUP_USER_AGENT"); ua != "" {
		cfg.UserAgent = ua
	}
}
