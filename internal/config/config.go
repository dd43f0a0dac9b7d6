// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Client holds chat client configuration.
type Client struct {
	Endpoint       string
	MaxAttempts    int
	RetryDelay     time.Duration
	DedupThreshold time.Duration
	DedupCapacity  int
	GuardTTL       time.Duration
}

// Server holds development chat server configuration.
type Server struct {
	Port            string
	DBPath          string
	AllowedOrigin   string
	ConversationTTL time.Duration
}

// LoadClient reads client configuration from environment variables.
func LoadClient() (*Client, error) {
	cfg := &Client{
		Endpoint:       getEnv("CHAT_ENDPOINT", "ws://localhost:8080/ws"),
		MaxAttempts:    getEnvInt("RECONNECT_MAX_ATTEMPTS", 5),
		RetryDelay:     getEnvDuration("RECONNECT_DELAY", 3*time.Second),
		DedupThreshold: getEnvDuration("DEDUP_THRESHOLD", time.Second),
		DedupCapacity:  getEnvInt("DEDUP_CAPACITY", 10),
		GuardTTL:       getEnvDuration("GUARD_TTL", 5*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all client fields are usable.
func (c *Client) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("CHAT_ENDPOINT cannot be empty")
	}
	if !strings.HasPrefix(c.Endpoint, "ws://") && !strings.HasPrefix(c.Endpoint, "wss://") {
		return fmt.Errorf("CHAT_ENDPOINT must be a ws:// or wss:// URL")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("RECONNECT_MAX_ATTEMPTS must be > 0")
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("RECONNECT_DELAY must be > 0")
	}
	if c.DedupThreshold <= 0 {
		return fmt.Errorf("DEDUP_THRESHOLD must be > 0")
	}
	if c.DedupCapacity <= 0 {
		return fmt.Errorf("DEDUP_CAPACITY must be > 0")
	}
	if c.GuardTTL <= 0 {
		return fmt.Errorf("GUARD_TTL must be > 0")
	}
	return nil
}

// LoadServer reads server configuration from environment variables.
func LoadServer() (*Server, error) {
	cfg := &Server{
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "./data/chatbot.db"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "*"),
		ConversationTTL: getEnvDuration("CONVERSATION_TTL", 30*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all server fields are usable.
func (c *Server) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.ConversationTTL <= 0 {
		return fmt.Errorf("CONVERSATION_TTL must be > 0")
	}
	return nil
}

// IsDevelopment returns true when the server allows any origin.
func (c *Server) IsDevelopment() bool {
	return c.AllowedOrigin == "*" ||
		strings.Contains(c.AllowedOrigin, "localhost") ||
		strings.Contains(c.AllowedOrigin, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration parses Go duration syntax; bare integers are milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
