package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds the upstream API settings and the content selection
type Config struct {
	// Offline API
	APIURL       string
	FetchTimeout time.Duration
	UserAgent    string

	// Content to bundle
	BibleVersion       string
	CommentaryLanguage string
	TopicLanguage      string
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
		APIURL:       strings.TrimRight(getEnv("API_URL", "https://api.versemate.org"), "/"),
		FetchTimeout: time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 120)) * time.Second,
		UserAgent:    getEnv("USER_AGENT", "versemate-seed-db/1.0"),

		BibleVersion:       getEnv("BIBLE_VERSION", "NASB1995"),
		CommentaryLanguage: getEnv("COMMENTARY_LANGUAGE", "en-US"),
		TopicLanguage:      getEnv("TOPIC_LANGUAGE", "en"),
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
