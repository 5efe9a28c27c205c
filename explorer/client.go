// Package explorer is a rate-limited, caching client for Etherscan-compatible
// block explorer APIs. It answers account, transaction, token and gas queries
// without running a node. All remote I/O flows through a key-rotating Gateway
// and idempotent reads are memoized in a TTL cache.
package explorer

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// blockNumberTTL caps how long the chain head is memoized. The head advances
// every few seconds and drives confirmation counts, so it must not sit in the
// cache for the full read TTL.
const blockNumberTTL = 5 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is the typed facade over an Etherscan-compatible API.
type Client struct {
	cfg       Config
	gateway   *Gateway
	cache     *Cache
	transport Transport
	logger    *zap.Logger
}

// NewClient validates cfg and builds a client. Configuration errors are
// reported here, never at call time.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gateway, err := NewGateway(cfg.APIKeys, cfg.RequestsPerSecond)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		gateway:   gateway,
		transport: NewHTTPTransport(cfg.Timeout),
		logger:    zap.NewNop(),
	}

	if cfg.CacheTTL > 0 && cfg.CacheMaxEntries > 0 {
		cache, err := NewCache(cfg.CacheMaxEntries)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// get runs one explorer operation: cache lookup, then gateway-acquired remote
// call, then envelope unwrapping and decoding into out.
func (c *Client) get(ctx context.Context, module, action string, params url.Values, ttl time.Duration, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("module", module)
	params.Set("action", action)

	// Encode sorts keys, giving a normalized cache key.
	cacheKey := module + ":" + action + ":" + params.Encode()

	compute := func(ctx context.Context) ([]byte, error) {
		apiKey, err := c.gateway.Acquire(ctx)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("explorer request",
			zap.String("module", module),
			zap.String("action", action))

		call := url.Values{}
		for k, v := range params {
			call[k] = v
		}
		call.Set("apikey", apiKey)

		body, err := c.transport.Call(ctx, c.cfg.BaseURL, call)
		if err != nil {
			return nil, err
		}
		return unwrapEnvelope(body)
	}

	var result []byte
	var err error
	if c.cache != nil {
		result, err = c.cache.GetOrCompute(ctx, cacheKey, ttl, compute)
	} else {
		result, err = compute(ctx)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(result, out); err != nil {
		return Errorf(ErrCodeDecode, "decode %s.%s result: %v", module, action, err)
	}
	return nil
}

// unwrapEnvelope extracts the result payload from either explorer response
// shape: the standard {status, message, result} envelope or the proxy-style
// JSON-RPC {jsonrpc, id, result} envelope.
func unwrapEnvelope(body []byte) ([]byte, error) {
	var env struct {
		Status  *string         `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
		Error   *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, Errorf(ErrCodeDecode, "decode response envelope: %v", err)
	}

	if env.Status == nil {
		// Proxy-style envelope.
		if env.Error != nil {
			return nil, NewError(ErrCodeAPIError, env.Error.Message, map[string]interface{}{
				"code": env.Error.Code,
			})
		}
		if env.Result == nil {
			return nil, NewError(ErrCodeAPIError, "missing result field in response", nil)
		}
		return env.Result, nil
	}

	if *env.Status != "1" {
		// The explorer reports an empty transaction list as status 0.
		// That is an ordinary empty result, not a failure.
		if env.Message == "No transactions found" {
			return []byte("[]"), nil
		}
		message := env.Message
		var detail string
		if err := json.Unmarshal(env.Result, &detail); err == nil && detail != "" {
			message += ": " + detail
		}
		return nil, NewError(ErrCodeAPIError, message, nil)
	}

	if env.Result == nil {
		return nil, NewError(ErrCodeAPIError, "missing result field in response", nil)
	}
	return env.Result, nil
}

// ClearCache removes all cached read results.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// CacheStats returns the cached entry count and total weight in bytes.
func (c *Client) CacheStats() (entries int, weight int64) {
	if c.cache == nil {
		return 0, 0
	}
	return c.cache.Stats()
}
