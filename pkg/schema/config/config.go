package config

import (
	"os"
	"strconv"
	"sync"
)

// Config holds configuration for the output seed database
type Config struct {
	// SQLite output
	OutputPath string

	// Bulk load
	BatchSize int

	// Pragmas applied while populating
	JournalMode string
	Synchronous string
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the singleton configuration instance
func GetConfig() *Config {
	once.Do(func() {
		config = loadConfig()
	})
	return config
}

func loadConfig() *Config {
	return &Config{
		OutputPath: getEnv("SEED_DB_PATH", "assets/data/versemate-seed.db"),

		BatchSize: getEnvInt("BATCH_SIZE", 1000),

		JournalMode: getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		Synchronous: getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err != nil || i <= 0 {
			return defaultValue
		}
		return i
	}
	return defaultValue
}
