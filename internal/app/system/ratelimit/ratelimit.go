// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/docuhub/internal/app/system/auth"
	"github.com/dalemusser/docuhub/internal/app/system/jsonresp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether one more request for key fits in the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Memory is a fixed-window limiter held in process memory. It is safe for
// concurrent use; call Close to stop its cleanup goroutine.
type Memory struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	done     chan struct{}
	once     sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// NewMemory allows limit requests per key per duration.
func NewMemory(limit int, duration time.Duration) *Memory {
	l := &Memory{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		done:     make(chan struct{}),
	}
	go l.cleanupLoop(duration * 2)
	return l
}

func (l *Memory) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true, nil
	}
	if w.count >= l.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// Close stops the cleanup goroutine.
func (l *Memory) Close() {
	l.once.Do(func() { close(l.done) })
}

func (l *Memory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Redis is a fixed-window limiter shared by every server instance.
type Redis struct {
	client   *redis.Client
	limit    int
	duration time.Duration
	prefix   string
}

// NewRedis allows limit requests per key per duration across all
// instances using client.
func NewRedis(client *redis.Client, limit int, duration time.Duration) *Redis {
	return &Redis{client: client, limit: limit, duration: duration, prefix: "docuhub:rl:"}
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(l.duration)
	k := l.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.PExpire(ctx, k, l.duration)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.limit), nil
}

// PerUser limits each signed-in user (or, failing that, client IP) to the
// limiter's budget. Limiter failures let the request through.
func PerUser(l Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + ClientIP(r)
			if u, ok := auth.CurrentUser(r); ok {
				key = "user:" + u.ID
			}

			allowed, err := l.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable; allowing request",
					zap.String("key", key),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				jsonresp.Error(w, http.StatusTooManyRequests, "rate_limited",
					"too many changes; slow down and retry shortly", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}
