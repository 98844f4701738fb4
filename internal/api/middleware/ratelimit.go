package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimit caps requests per client within a fixed window.
type RateLimit struct {
	Requests int64
	Window   time.Duration
}

// RateLimiter counts requests per client IP in Redis, so every server
// instance sharing the store enforces the same budget.
type RateLimiter struct {
	client *redis.Client
	limit  RateLimit
	logger zerolog.Logger
	now    func() time.Time
}

// NewRateLimiter creates a limiter allowing limit.Requests per limit.Window.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger, limit RateLimit) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, logger: logger, now: time.Now}
}

// Allow counts one request for key. It returns whether the request is within
// budget, the requests left and the window reset time.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Time, error) {
	now := rl.now()
	bucket := now.UnixNano() / int64(rl.limit.Window)
	resetAt := time.Unix(0, (bucket+1)*int64(rl.limit.Window))
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := rl.client.TxPipeline()
	count := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, rl.limit.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, resetAt, err
	}

	remaining := rl.limit.Requests - count.Val()
	if remaining < 0 {
		remaining = 0
	}
	return count.Val() <= rl.limit.Requests, remaining, resetAt, nil
}

// Middleware rejects clients over budget with 429. Redis failures let the
// request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		allowed, remaining, resetAt, err := rl.Allow(r.Context(), ip)
		if err != nil {
			rl.logger.Warn().Err(err).Str("ip", ip).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rl.limit.Requests, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retry := int(time.Until(resetAt).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retry))

			rl.logger.Warn().
				Str("event", "rate_limit_exceeded").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Msg("rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware has
// already applied forwarding headers.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
