// Package auth verifies bearer tokens and carries the caller through the
// request context.
//
// Tokens are gorilla/securecookie values (HMAC-signed, AES-encrypted)
// wrapping a TokenUser. They are minted by `docsctl token` and sent as
//
//	Authorization: Bearer <token>
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/docuhub/internal/app/system/jsonresp"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TokenName is the securecookie name bound into every token's MAC.
const TokenName = "docuhub-token"

var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenUser is what a token carries and what we inject into r.Context().
type TokenUser struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ObjectID parses the user id.
func (u *TokenUser) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(u.ID)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*TokenUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*TokenUser)
	return u, ok
}

// UserID returns the caller's ObjectID. ok is false when there is no caller
// or the id is malformed.
func UserID(r *http.Request) (primitive.ObjectID, bool) {
	u, ok := CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := u.ObjectID()
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// TokenManager mints and verifies bearer tokens.
type TokenManager struct {
	codec *securecookie.SecureCookie
	ttl   time.Duration
	log   *zap.Logger
}

// NewTokenManager builds a manager from the configured keys. hashKey must be
// at least 32 bytes; blockKey must be 16, 24 or 32 bytes (AES-128/192/256).
func NewTokenManager(hashKey, blockKey string, ttl time.Duration, logger *zap.Logger) (*TokenManager, error) {
	if len(hashKey) < 32 {
		return nil, fmt.Errorf("token hash key must be at least 32 bytes, got %d", len(hashKey))
	}
	switch len(blockKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("token block key must be 16, 24 or 32 bytes, got %d", len(blockKey))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}

	codec := securecookie.New([]byte(hashKey), []byte(blockKey))
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(ttl / time.Second))
	// Tokens travel in a header, not a cookie jar; allow room for long names.
	codec.MaxLength(8192)

	return &TokenManager{codec: codec, ttl: ttl, log: logger}, nil
}

// TTL reports how long minted tokens stay valid.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Mint returns a token for u.
func (m *TokenManager) Mint(u TokenUser) (string, error) {
	if _, err := u.ObjectID(); err != nil {
		return "", fmt.Errorf("token user id: %w", err)
	}
	return m.codec.Encode(TokenName, u)
}

// Parse verifies token and returns its user.
func (m *TokenManager) Parse(token string) (*TokenUser, error) {
	var u TokenUser
	if err := m.codec.Decode(TokenName, token, &u); err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := u.ObjectID(); err != nil {
		return nil, ErrInvalidToken
	}
	return &u, nil
}

// RequireSignedIn verifies the bearer token and injects its user into the
// context. Missing or bad tokens get a 401 JSON error.
func (m *TokenManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Already injected (tests).
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := bearerToken(r)
		if err != nil {
			jsonresp.Error(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
			return
		}
		u, err := m.Parse(raw)
		if err != nil {
			m.log.Debug("rejected bearer token",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			jsonresp.Error(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
			return
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// WithTestUser injects u directly, bypassing token verification.
func WithTestUser(r *http.Request, u *TokenUser) *http.Request {
	return withUser(r, u)
}

// WithUserContext returns ctx carrying u.
func WithUserContext(ctx context.Context, u *TokenUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// helpers

func withUser(r *http.Request, u *TokenUser) *http.Request {
	return r.WithContext(WithUserContext(r.Context(), u))
}

func bearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", ErrNoToken
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return strings.TrimSpace(token), nil
}
