package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/procurehub/portal/pkg/config"
	"github.com/procurehub/portal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace      = "portal"
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	sessionPrefix     = "session"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	TTL(context.Context, string) *redis.DurationCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps the redis helpers backing sessions, auth rate limits and
// idempotent transition replays.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// IdempotencyStore exposes minimal operations used by idempotency helpers.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	Set(context.Context, string, any, time.Duration) error
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "redis connection established")
	}
	return &Client{store: raw, raw: raw}, nil
}

// optionsFromConfig prefers PORTAL_REDIS_URL; explicit pool and timeout
// settings only fill values the URL left unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	default:
		return nil, errors.New("redis url or address is required")
	}

	fillInt(&opts.DB, cfg.DB)
	fillInt(&opts.PoolSize, cfg.PoolSize)
	fillInt(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDuration(&opts.DialTimeout, cfg.DialTimeout)
	fillDuration(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDuration(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func fillInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func fillDuration(dst *time.Duration, v time.Duration) {
	if *dst == 0 {
		*dst = v
	}
}

// ErrNotInitialized is returned by every operation on a zero Client.
var ErrNotInitialized = errors.New("redis client not initialized")

// IsMiss reports whether err is a cache miss rather than a failure.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (c *Client) ready() error {
	if c == nil || c.store == nil {
		return ErrNotInitialized
	}
	return nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns redis.Nil (see IsMiss) when key is absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	return c.store.Get(ctx, key).Result()
}

// SetNX sets a value only if the key does not exist yet.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

// WindowResult describes the state of a fixed-window counter after a hit.
type WindowResult struct {
	Allowed bool
	Count   int64
	Limit   int64
	// ResetIn is how long until the window closes; zero when unknown.
	ResetIn time.Duration
}

// Remaining returns how many hits are left in the current window.
func (w WindowResult) Remaining() int64 {
	if w.Count >= w.Limit {
		return 0
	}
	return w.Limit - w.Count
}

// FixedWindowAllow counts a hit against scope. The first hit opens the window;
// later hits read the remaining TTL and re-arm a key that lost its expiry.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (WindowResult, error) {
	if err := c.ready(); err != nil {
		return WindowResult{}, err
	}
	key := c.RateLimitKey(scope)
	count, err := c.store.Incr(ctx, key).Result()
	if err != nil {
		return WindowResult{}, fmt.Errorf("incr %s: %w", key, err)
	}

	result := WindowResult{Allowed: count <= limit, Count: count, Limit: limit}
	if count == 1 {
		if err := c.store.Expire(ctx, key, window).Err(); err != nil {
			return result, fmt.Errorf("expire %s: %w", key, err)
		}
		result.ResetIn = window
		return result, nil
	}

	ttl, err := c.store.TTL(ctx, key).Result()
	switch {
	case err != nil:
		// counting succeeded; ResetIn stays unknown
	case ttl > 0:
		result.ResetIn = ttl
	case ttl == -1:
		if err := c.store.Expire(ctx, key, window).Err(); err == nil {
			result.ResetIn = window
		}
	}
	return result, nil
}

// IdempotencyKey returns a namespaced key for idempotency storage.
func (c *Client) IdempotencyKey(scope, id string) string {
	return c.buildKey(idempotencyPrefix, scope, id)
}

// RateLimitKey returns a namespaced key for rate limit counters.
func (c *Client) RateLimitKey(scope string) string {
	return c.buildKey(rateLimitPrefix, scope)
}

// AccessSessionKey builds a namespaced key for access-token-based sessions.
func (c *Client) AccessSessionKey(accessID string) string {
	return c.buildKey(sessionPrefix, "access", accessID)
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.Del(ctx, keys...).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// buildKey joins parts under the portal namespace, skipping blanks.
func (c *Client) buildKey(parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			clean = append(clean, part)
		}
	}
	return strings.Join(clean, ":")
}
