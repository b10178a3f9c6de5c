package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Sources   SourcesConfig
	Database  DatabaseConfig
	OpenAI    OpenAIConfig
	Coach     CoachConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SourcesConfig holds the food source configuration
type SourcesConfig struct {
	CiqualPath string `mapstructure:"ciqual_path"`
	OFFBaseURL string `mapstructure:"off_base_url"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

// OpenAIConfig holds the OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url"`
	EmbeddingModel  string  `mapstructure:"embedding_model"`
	CompletionModel string  `mapstructure:"completion_model"`
	Dimensions      int     `mapstructure:"dimensions"`
	Temperature     float32 `mapstructure:"temperature"`
	CacheSize       int     `mapstructure:"cache_size"`
}

// CoachConfig holds retrieval tuning for the coach
type CoachConfig struct {
	SimilarityThreshold float32 `mapstructure:"similarity_threshold"`
	RetrievalLimit      int     `mapstructure:"retrieval_limit"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	OFFPerMinute int `mapstructure:"off_per_minute"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/lym/")

	// Environment variable settings
	v.SetEnvPrefix("LYM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"capacitor://*", "http://localhost:3000"})

	// Food source defaults
	v.SetDefault("sources.ciqual_path", "data/ciqual.json")
	v.SetDefault("sources.off_base_url", "https://world.openfoodfacts.org")

	// Database defaults. The empty url default registers the key so the
	// LYM_DATABASE_URL env var binds.
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.completion_model", "gpt-4o-mini")
	v.SetDefault("openai.dimensions", 1536)
	v.SetDefault("openai.temperature", 0.4)
	v.SetDefault("openai.cache_size", 1024)

	// Coach defaults
	v.SetDefault("coach.similarity_threshold", 0.45)
	v.SetDefault("coach.retrieval_limit", 5)

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.off_per_minute", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Sources.CiqualPath == "" {
		return fmt.Errorf("ciqual dataset path is required (set LYM_SOURCES_CIQUAL_PATH)")
	}

	if config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set LYM_OPENAI_API_KEY)")
	}

	if config.Database.URL == "" {
		return fmt.Errorf("database URL is required (set LYM_DATABASE_URL)")
	}

	if config.Coach.SimilarityThreshold < 0 || config.Coach.SimilarityThreshold > 1 {
		return fmt.Errorf("coach similarity threshold must be within [0,1], got: %g", config.Coach.SimilarityThreshold)
	}

	return nil
}
