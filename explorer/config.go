package explorer

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Default endpoints for Etherscan-compatible APIs.
const (
	MainnetBaseURL = "https://api.etherscan.io/api"
	SepoliaBaseURL = "https://api-sepolia.etherscan.io/api"
)

// Config holds the settings for an explorer Client.
type Config struct {
	// APIKeys is the credential pool. Multiple keys are rotated round-robin
	// across requests.
	APIKeys []string

	// BaseURL of the Etherscan-compatible API.
	BaseURL string

	// RequestsPerSecond is the shared rate ceiling across all keys.
	RequestsPerSecond int

	// Timeout for a single HTTP request.
	Timeout time.Duration

	// CacheTTL is how long idempotent read results are memoized.
	// Zero disables caching.
	CacheTTL time.Duration

	// CacheMaxEntries bounds the cache; least-recently-used entries are
	// evicted on overflow.
	CacheMaxEntries int
}

// DefaultConfig returns a mainnet configuration with free-tier defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKeys:           []string{apiKey},
		BaseURL:           MainnetBaseURL,
		RequestsPerSecond: 5,
		Timeout:           30 * time.Second,
		CacheTTL:          5 * time.Minute,
		CacheMaxEntries:   1000,
	}
}

// TestnetConfig returns a Sepolia testnet configuration.
func TestnetConfig(apiKey string) Config {
	cfg := DefaultConfig(apiKey)
	cfg.BaseURL = SepoliaBaseURL
	return cfg
}

// ConfigFromEnv builds a configuration from environment variables:
//
//	ETHERSCAN_API_KEYS        comma-separated list of API keys (required)
//	ETHERSCAN_BASE_URL        base URL (default: mainnet)
//	ETHERSCAN_RATE_LIMIT      requests per second (default: 5)
//	ETHERSCAN_TIMEOUT         request timeout in seconds (default: 30)
//	ETHERSCAN_CACHE_TTL       cache TTL in seconds (default: 300)
//	ETHERSCAN_CACHE_MAX_SIZE  maximum cache entries (default: 1000)
func ConfigFromEnv() (Config, error) {
	raw := os.Getenv("ETHERSCAN_API_KEYS")
	if raw == "" {
		return Config{}, NewError(ErrCodeInvalidConfig, "ETHERSCAN_API_KEYS not set", nil)
	}

	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return Config{}, NewError(ErrCodeInvalidConfig, "ETHERSCAN_API_KEYS cannot be empty", nil)
	}

	cfg := Config{
		APIKeys:           keys,
		BaseURL:           envOr("ETHERSCAN_BASE_URL", MainnetBaseURL),
		RequestsPerSecond: envIntOr("ETHERSCAN_RATE_LIMIT", 5),
		Timeout:           time.Duration(envIntOr("ETHERSCAN_TIMEOUT", 30)) * time.Second,
		CacheTTL:          time.Duration(envIntOr("ETHERSCAN_CACHE_TTL", 300)) * time.Second,
		CacheMaxEntries:   envIntOr("ETHERSCAN_CACHE_MAX_SIZE", 1000),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration. Errors here are deterministic and are
// reported at construction, never at call time.
func (c Config) Validate() error {
	if len(c.APIKeys) == 0 {
		return NewError(ErrCodeInvalidConfig, "at least one API key is required", nil)
	}
	for _, key := range c.APIKeys {
		if key == "" {
			return NewError(ErrCodeInvalidConfig, "API key cannot be empty", nil)
		}
	}
	if c.BaseURL == "" {
		return NewError(ErrCodeInvalidConfig, "base URL cannot be empty", nil)
	}
	if c.RequestsPerSecond <= 0 {
		return NewError(ErrCodeInvalidConfig, "rate limit must be greater than 0", nil)
	}
	if c.CacheTTL < 0 {
		return NewError(ErrCodeInvalidConfig, "cache TTL cannot be negative", nil)
	}
	if c.CacheMaxEntries < 0 {
		return NewError(ErrCodeInvalidConfig, "cache max entries cannot be negative", nil)
	}
	return nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envIntOr(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
