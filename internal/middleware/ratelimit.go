package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	apperrors "github.com/socialchef/thermochef/internal/errors"
	"github.com/socialchef/thermochef/internal/logger"
	"github.com/socialchef/thermochef/internal/metrics"
)

// Decision is the outcome of a single rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether the client identified by key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a fixed window counter shared by every server instance.
type RedisLimiter struct {
	redis     *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

// NewRedisLimiter creates a limiter allowing limit requests per window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, keyPrefix string) *RedisLimiter {
	return &RedisLimiter{
		redis:     client,
		limit:     limit,
		window:    window,
		keyPrefix: keyPrefix,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := time.Now().Truncate(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.keyPrefix, key, windowStart.Unix())

	pipe := l.redis.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incr.Val())
	return Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: max(l.limit-count, 0),
		Reset:     windowStart.Add(l.window),
	}, nil
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps a token bucket per client in process memory.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	burst    int
	every    time.Duration
	idleTTL  time.Duration
	now      func() time.Time
}

// NewMemoryLimiter allows perMinute requests per minute per client with the given burst.
// A perMinute of zero or less lets every request through.
func NewMemoryLimiter(perMinute, burst int) *MemoryLimiter {
	if burst <= 0 {
		burst = max(perMinute, 1)
	}
	l := &MemoryLimiter{
		visitors: make(map[string]*visitor),
		limit:    perMinute,
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
	if perMinute > 0 {
		l.every = time.Minute / time.Duration(perMinute)
	}
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.every == 0 {
		return Decision{Allowed: true, Reset: now}, nil
	}

	v, ok := l.visitors[key]
	if !ok {
		l.sweep(now)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	tokens := v.limiter.TokensAt(now)

	reset := now
	if tokens < 1 {
		reset = now.Add(time.Duration((1 - tokens) * float64(l.every)))
	}

	return Decision{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: max(int(tokens), 0),
		Reset:     reset,
	}, nil
}

// sweep drops clients idle for longer than idleTTL. Caller holds mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, key)
		}
	}
}

// RateLimit rejects clients that exceed limiter with 429. OPTIONS requests are never
// counted, and a limiter failure lets the request through.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			d, err := limiter.Allow(ctx, ClientIP(r))
			if err != nil {
				logger.FromContext(ctx).WarnContext(ctx, "rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

			if !d.Allowed {
				retryAfter := max(int(time.Until(d.Reset).Seconds()+0.999), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				metrics.RateLimitRejectionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("route", r.URL.Path)))

				appErr := apperrors.NewRateLimitError(
					"Too many requests. Please wait a moment and try again.",
					"RATE_LIMITED",
					"Wait before sending another recipe.",
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(appErr.StatusCode)
				json.NewEncoder(w).Encode(map[string]string{"error": appErr.Message})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of r.RemoteAddr. Proxy headers are applied upstream
// by chi's RealIP middleware.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
