package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/docuhub/internal/app/system/auth"
	"github.com/dalemusser/docuhub/internal/app/system/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemory_Window(t *testing.T) {
	l := ratelimit.NewMemory(2, 50*time.Millisecond)
	t.Cleanup(l.Close)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok, "third request in the window is refused")

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	time.Sleep(60 * time.Millisecond)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok, "a new window starts after expiry")
}

func TestRedis_Window(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := ratelimit.NewRedis(client, 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "user:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, ok)

	// A second limiter on the same Redis shares the budget.
	other := ratelimit.NewRedis(client, 3, time.Hour)
	ok, err = other.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, ok)

	s.Close()
	_, err = l.Allow(ctx, "user:1")
	assert.Error(t, err)
}

type failing struct{}

func (failing) Allow(context.Context, string) (bool, error) { return false, errors.New("down") }

func TestPerUser(t *testing.T) {
	l := ratelimit.NewMemory(1, time.Hour)
	t.Cleanup(l.Close)
	h := ratelimit.PerUser(l, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPut, "/documents/x", nil)
		if user != "" {
			req = auth.WithTestUser(req, &auth.TokenUser{ID: user})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("u1"))
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
	assert.Equal(t, http.StatusNoContent, send("u2"))
	assert.Equal(t, http.StatusNoContent, send(""), "anonymous callers are keyed by IP")
	assert.Equal(t, http.StatusTooManyRequests, send(""))

	open := ratelimit.PerUser(failing{}, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code, "limiter outages fail open")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "10.0.0.2:1234", "198.51.100.7"},
		{"remote with port", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ratelimit.ClientIP(req))
		})
	}
}
