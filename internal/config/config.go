package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Bridge configuration (external WhatsApp HTTP bridge)
	Bridge BridgeConfig

	// Poll configuration for the session state machine
	Poll PollConfig

	// Cache configuration for live conversation/message data
	Cache CacheConfig

	// Archive configuration (local message archive)
	Archive ArchiveConfig

	// Logging configuration
	Log LogConfig

	// Security configuration
	Security SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// BridgeConfig holds connection settings for the WhatsApp bridge
type BridgeConfig struct {
	BaseURL      string
	DashboardURL string
	APIKey       string
	Username     string
	Password     string
	Timeout      time.Duration
	SessionName  string // Default session name used for connect intents
	DemoMode     bool   // Serve fixture data instead of talking to the bridge
}

// PollConfig holds timing for the connection poll chain
type PollConfig struct {
	InitialDelay    time.Duration // Delay before the first status poll after connect
	Interval        time.Duration // Steady-state poll interval while connecting
	FailureInterval time.Duration // Backoff interval after a poll transport failure
	SessionRefresh  time.Duration // Background session-list refresh cadence
}

// CacheConfig holds refresh cadences for the gated data caches
type CacheConfig struct {
	ConversationRefresh time.Duration
	MessageRefresh      time.Duration
	MessageFetchLimit   int // Number of messages requested per chat fetch
}

// ArchiveConfig holds database settings for the local message archive
type ArchiveConfig struct {
	Driver string
	DSN    string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// SecurityConfig holds security-specific configuration
type SecurityConfig struct {
	// API Keys - sent by clients for authentication
	APIKeys []string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	// Try to load .env file (ignore errors - it's optional)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", ""),
			Port:            getEnvAsInt("SERVER_PORT", 3002),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Bridge: BridgeConfig{
			BaseURL:      getEnv("BRIDGE_BASE_URL", "http://localhost:3000"),
			DashboardURL: getEnv("BRIDGE_DASHBOARD_URL", "http://localhost:3000/dashboard/"),
			APIKey:       getEnv("BRIDGE_API_KEY", ""),
			Username:     getEnv("BRIDGE_USERNAME", ""),
			Password:     getEnv("BRIDGE_PASSWORD", ""),
			Timeout:      getEnvAsDuration("BRIDGE_TIMEOUT", 30*time.Second),
			SessionName:  getEnv("BRIDGE_SESSION_NAME", "default"),
			DemoMode:     getEnvAsBool("BRIDGE_DEMO_MODE", false),
		},
		Poll: PollConfig{
			InitialDelay:    getEnvAsDuration("POLL_INITIAL_DELAY", 2*time.Second),
			Interval:        getEnvAsDuration("POLL_INTERVAL", 3*time.Second),
			FailureInterval: getEnvAsDuration("POLL_FAILURE_INTERVAL", 5*time.Second),
			SessionRefresh:  getEnvAsDuration("POLL_SESSION_REFRESH", 5*time.Second),
		},
		Cache: CacheConfig{
			ConversationRefresh: getEnvAsDuration("CACHE_CONVERSATION_REFRESH", 10*time.Second),
			MessageRefresh:      getEnvAsDuration("CACHE_MESSAGE_REFRESH", 5*time.Second),
			MessageFetchLimit:   getEnvAsInt("CACHE_MESSAGE_FETCH_LIMIT", 100),
		},
		Archive: ArchiveConfig{
			Driver: getEnv("ARCHIVE_DB_DRIVER", "sqlite3"),
			DSN:    getEnv("ARCHIVE_DB_DSN", "file:archive.db?_foreign_keys=on"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Security: SecurityConfig{
			// API Keys that clients use to authenticate
			APIKeys: getEnvAsSlice("API_KEYS", []string{}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if !c.Bridge.DemoMode && c.Bridge.BaseURL == "" {
		return fmt.Errorf("bridge base URL is required")
	}

	if c.Bridge.SessionName == "" {
		return fmt.Errorf("bridge session name is required")
	}

	if c.Poll.InitialDelay <= 0 || c.Poll.Interval <= 0 || c.Poll.FailureInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}

	if c.Archive.Driver == "" {
		return fmt.Errorf("archive database driver is required")
	}

	if c.Archive.DSN == "" {
		return fmt.Errorf("archive database DSN is required")
	}

	if len(c.Security.APIKeys) == 0 {
		return fmt.Errorf("at least one API key is required")
	}

	// Check for default/insecure API keys
	for _, key := range c.Security.APIKeys {
		if key == "default-api-key" || key == "api-key-123" || len(key) < 8 {
			return fmt.Errorf("insecure or default API key detected: '%s'. Please set secure API keys in environment variables", key)
		}
	}

	return nil
}

// Address returns the server address in the format host:port
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Helper functions to get environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	values := make([]string, 0)
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	return values
}
