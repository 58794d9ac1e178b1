package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all process configuration, resolved once at startup.
type Config struct {
	Port              string
	MongoURI          string
	PaystackSecretKey string
	PaystackBaseURL   string
	BaseURL           string
}

// Load reads configuration from the environment and validates it eagerly.
// Missing secrets fail here, at startup, not on the first request.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getenv("PORT", "8080"),
		MongoURI:          os.Getenv("MONGOURI"),
		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:   getenv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		BaseURL:           getenv("BASE_URL", "http://localhost:3000"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGOURI environment variable not set")
	}
	if cfg.PaystackSecretKey == "" {
		return nil, fmt.Errorf("PAYSTACK_SECRET_KEY environment variable not set")
	}
	if !strings.HasPrefix(cfg.PaystackSecretKey, "sk_") {
		return nil, fmt.Errorf("PAYSTACK_SECRET_KEY does not look like a Paystack secret key")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
