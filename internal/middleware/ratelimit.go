package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/Diyorbek0204/dern-support/internal/config"
)

// tokenBucketScript refills and takes one token atomically. It returns
// {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// NewTokenBucket limits requests per key (see buildRateKey). Buckets live in
// Redis when rdb is non-nil; otherwise, and whenever a Redis call fails,
// an in-process limiter with the same capacity and refill rate is used.
// jwtSecret verifies bearer tokens so user-based keys see the caller.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, jwtSecret string, logger *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	local := newLocalBuckets(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c, jwtSecret)

			var (
				allowed   bool
				remaining int64
				retryMs   int64
			)
			ok := false
			if rdb != nil {
				allowed, remaining, retryMs, ok = redisTake(c, rdb, cfg, key)
				if !ok && cfg.Debug {
					logger.Warn("ratelimit redis failure, using local bucket", "key", key)
				}
			}
			if !ok {
				allowed, remaining, retryMs = local.take(key)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}

			if !allowed {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					logger.Info("ratelimit block", "key", key, "retry_ms", retryMs)
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{"detail": "Too many requests"})
			}
			return next(c)
		}
	}
}

func redisTake(c echo.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (allowed bool, remaining, retryMs int64, ok bool) {
	args := []interface{}{
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL / time.Second),
	}
	vals, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
	if err != nil {
		return false, 0, 0, false
	}
	arr, isArr := vals.([]interface{})
	if !isArr || len(arr) != 3 {
		return false, 0, 0, false
	}
	return fmt.Sprint(arr[0]) == "1", asInt64(arr[1]), asInt64(arr[2]), true
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// localBuckets is the in-process fallback. Idle entries are dropped after
// the configured TTL.
type localBuckets struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	visitors map[string]*visitor
	lastGC   time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalBuckets(cfg config.RateLimitConfig) *localBuckets {
	return &localBuckets{
		limit:    rate.Every(cfg.RefillInterval / time.Duration(cfg.RefillTokens)),
		burst:    cfg.Capacity,
		ttl:      cfg.TTL,
		visitors: make(map[string]*visitor),
		lastGC:   time.Now(),
	}
}

func (b *localBuckets) take(key string) (allowed bool, remaining, retryMs int64) {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastGC) > b.ttl {
		for k, v := range b.visitors {
			if now.Sub(v.lastSeen) > b.ttl {
				delete(b.visitors, k)
			}
		}
		b.lastGC = now
	}

	v, ok := b.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay.Milliseconds()
	}
	return true, int64(v.limiter.TokensAt(now)), 0
}

// buildRateKey derives the bucket key from cfg.KeyStrategy.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context, jwtSecret string) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := rateSubject(c, jwtSecret)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
