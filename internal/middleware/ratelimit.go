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

	"github.com/iliyamo/club-booking/internal/config"
)

var limiterScript = redis.NewScript(`
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
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// maxLocalBuckets bounds the in-process fallback map.
const maxLocalBuckets = 10000

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter is a token bucket per caller.  Buckets live in Redis so every
// instance shares them; when Redis is absent or failing, an in-process
// golang.org/x/time/rate bucket with the same shape takes over.
type RateLimiter struct {
	cfg    config.RateLimitConfig
	rdb    *redis.Client
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	local map[string]*localBucket
}

// NewRateLimiter builds a limiter; rdb may be nil.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		cfg:    cfg,
		rdb:    rdb,
		logger: logger,
		now:    time.Now,
		local:  make(map[string]*localBucket),
	}
}

type verdict struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

// Middleware rejects callers over their budget with 429 and Retry-After.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	if !rl.cfg.Enabled {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(rl.cfg, c)
			v, ok := rl.takeRedis(c, key)
			if !ok {
				v = rl.takeLocal(key)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if rl.cfg.Debug {
				c.Response().Header().Set("X-RateLimit-Key", key)
			}
			if v.allowed {
				return next(c)
			}

			secs := int(math.Ceil(v.retry.Seconds()))
			if secs < 0 {
				secs = 0
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
			rl.logger.Info("rate limited", "key", key, "retry_after", secs)
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// takeRedis spends a token from the shared bucket.  ok is false when Redis
// is unavailable and the caller should fall back.
func (rl *RateLimiter) takeRedis(c echo.Context, key string) (verdict, bool) {
	if rl.rdb == nil {
		return verdict{}, false
	}
	args := []any{
		rl.now().UnixMilli(),
		rl.cfg.Capacity,
		rl.cfg.RefillTokens,
		rl.cfg.RefillInterval.Milliseconds(),
		int64(rl.cfg.TTL / time.Second),
	}
	vals, err := limiterScript.Run(c.Request().Context(), rl.rdb, []string{key}, args...).Result()
	if err != nil {
		rl.logger.Warn("rate limit redis error, using local bucket", "key", key, "error", err)
		return verdict{}, false
	}
	arr, ok := vals.([]any)
	if !ok || len(arr) != 3 {
		rl.logger.Warn("unexpected rate limit script result", "key", key, "result", fmt.Sprintf("%#v", vals))
		return verdict{}, false
	}
	return verdict{
		allowed:   asInt64(arr[0]) == 1,
		remaining: asInt64(arr[1]),
		retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, true
}

func (rl *RateLimiter) takeLocal(key string) verdict {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.local[key]
	if !ok {
		if len(rl.local) >= maxLocalBuckets {
			rl.pruneLocked(now)
		}
		every := rl.cfg.RefillInterval / time.Duration(rl.cfg.RefillTokens)
		b = &localBucket{lim: rate.NewLimiter(rate.Every(every), rl.cfg.Capacity)}
		rl.local[key] = b
	}
	b.seen = now

	if b.lim.AllowN(now, 1) {
		return verdict{allowed: true, remaining: int64(b.lim.TokensAt(now))}
	}
	missing := 1 - b.lim.TokensAt(now)
	var retry time.Duration
	if l := float64(b.lim.Limit()); l > 0 {
		retry = time.Duration(missing / l * float64(time.Second))
	}
	return verdict{allowed: false, retry: retry}
}

func (rl *RateLimiter) pruneLocked(now time.Time) {
	for k, b := range rl.local {
		if now.Sub(b.seen) > rl.cfg.TTL {
			delete(rl.local, k)
		}
	}
}

func asInt64(v any) int64 {
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

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := clientIP(c)
	club := clubID(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "club":
		parts = append(parts, "club", club)
	case "ip_club_route":
		parts = append(parts, "ip", ip, "club", club, "route", route)
	default: // ip_club
		parts = append(parts, "ip", ip, "club", club)
	}
	return strings.Join(parts, ":")
}
