package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sajithdilhan/ECommerceBackend/internal/shared/events"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	RedisAddr   string
	APIKey      string

	ConsumerGroup     string
	UserCreatedTopic  string
	OrderCreatedTopic string

	CacheTTL time.Duration
}

func Load(service string) (Config, error) {
	if value := os.Getenv("SERVICE_NAME"); value != "" {
		service = value
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	group := os.Getenv("CONSUMER_GROUP")
	if group == "" {
		group = service
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisAddr:   redisAddr,
		APIKey:      os.Getenv("API_KEY"),

		ConsumerGroup:     group,
		UserCreatedTopic:  envString("USER_CREATED_TOPIC", events.TopicUserCreated),
		OrderCreatedTopic: envString("ORDER_CREATED_TOPIC", events.TopicOrderCreated),

		CacheTTL: envDuration("CACHE_TTL", 5*time.Minute),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
