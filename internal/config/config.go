package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the similarity service
type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	Search  SearchConfig
	Storage StorageConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr        string
	ReadTimeout time.Duration
}

// DatasetConfig holds catalog ingestion configuration
type DatasetConfig struct {
	MoviesPath    string
	StopwordsFile string
}

// SearchConfig holds vectorizer and query configuration
type SearchConfig struct {
	Mode           string
	Source         string
	DefaultK       int
	CastLimit      int
	EnableStemming bool
}

// StorageConfig holds snapshot persistence configuration
type StorageConfig struct {
	Backend string
	Path    string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        GetStringEnv("SERVER_ADDR", ":8080"),
			ReadTimeout: GetDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		},
		Dataset: DatasetConfig{
			MoviesPath:    GetStringEnv("DATASET_PATH", "./data/movies.csv"),
			StopwordsFile: GetStringEnv("STOPWORDS_FILE", ""),
		},
		Search: SearchConfig{
			Mode:           GetStringEnv("SEARCH_MODE", "tfidf"),
			Source:         GetStringEnv("SEARCH_SOURCE", "soup"),
			DefaultK:       GetIntEnv("SEARCH_DEFAULT_K", 10),
			CastLimit:      GetIntEnv("SEARCH_CAST_LIMIT", 3),
			EnableStemming: GetBoolEnv("SEARCH_ENABLE_STEMMING", true),
		},
		Storage: StorageConfig{
			Backend: GetStringEnv("STORAGE_BACKEND", "file"),
			Path:    GetStringEnv("STORAGE_PATH", "./data/index.json"),
		},
	}
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
