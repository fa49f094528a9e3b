package config

import "time"

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"

	// Keep test runs fast: no jitter, no connect backoff.
	cfg.DatabaseConnectRetryDelay = 0
	cfg.SearchDelayMin = 0
	cfg.SearchDelayMax = time.Millisecond
}
