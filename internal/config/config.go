package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"eateryApi/internal/shared/normalization"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Refresh  RefreshConfig
	Logging  LoggingConfig
	Kafka    KafkaConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port string
}

// APIConfig points at the upstream eatery REST API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RefreshConfig drives the scheduled batch refresh. Interval 0 disables the schedule.
type RefreshConfig struct {
	Interval     time.Duration
	Concurrency  int
	OnStart      bool
	LoadFixtures bool
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

// SecurityConfig guards the refresh endpoints. RefreshRole, when set, must appear in the token roles.
type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
	RefreshRole  string
}

// Load reads configuration from the environment, applying defaults for anything unset.
func Load() (*Config, error) {
	timeout, err := durationEnv("EATERY_API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	interval, err := durationEnv("REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	concurrency, err := intEnv("REFRESH_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}
	onStart, err := boolEnv("REFRESH_ON_START", true)
	if err != nil {
		return nil, err
	}
	fixtures, err := boolEnv("LOAD_FIXTURES", false)
	if err != nil {
		return nil, err
	}

	brokers := normalization.SplitList(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		brokers = normalization.SplitList(os.Getenv("KAFKA_BROKER"))
	}
	topics := normalization.SplitList(os.Getenv("KAFKA_TOPICS"))
	if len(topics) == 0 {
		topics = []string{"eatery.calendar.updated"}
	}

	cfg := &Config{
		Server: ServerConfig{Port: stringEnv("PORT", "8080")},
		API: APIConfig{
			BaseURL: stringEnv("EATERY_API_BASE_URL", "https://eatery-web.herokuapp.com"),
			Timeout: timeout,
		},
		Refresh: RefreshConfig{
			Interval:     interval,
			Concurrency:  concurrency,
			OnStart:      onStart,
			LoadFixtures: fixtures,
		},
		Logging: LoggingConfig{
			Level:     stringEnv("LOG_LEVEL", "info"),
			Format:    stringEnv("LOG_FORMAT", "text"),
			Directory: stringEnv("LOG_DIRECTORY", "./logs"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			GroupID: stringEnv("KAFKA_GROUP_ID", "eatery-api"),
			Topics:  topics,
		},
		Security: SecurityConfig{
			JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
			JWTPublicKey: strings.TrimSpace(os.Getenv("JWT_PUBLIC_KEY")),
			RefreshRole:  strings.TrimSpace(os.Getenv("JWT_REFRESH_ROLE")),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that would make the service misbehave silently.
func (c *Config) Validate() error {
	if c.API.Timeout <= 0 {
		return fmt.Errorf("EATERY_API_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative, got %s", c.Refresh.Interval)
	}
	if c.Refresh.Concurrency < 0 {
		return fmt.Errorf("REFRESH_CONCURRENCY must not be negative, got %d", c.Refresh.Concurrency)
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("EATERY_API_BASE_URL must be an http(s) URL, got %q", c.API.BaseURL)
	}
	return nil
}

// RefreshProtected reports whether refresh endpoints require a bearer token.
func (c *Config) RefreshProtected() bool {
	return c.Security.JWTSecret != "" || c.Security.JWTPublicKey != ""
}

func stringEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, nil
}
