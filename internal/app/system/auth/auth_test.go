package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/docuhub/internal/app/system/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	testHashKey  = "test-hash-key-must-be-at-least-32-bytes"
	testBlockKey = "0123456789abcdef0123456789abcdef"
)

func newTestTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager(testHashKey, testBlockKey, time.Hour, zap.NewNop())
	require.NoError(t, err)
	return tm
}

func protected(tm *auth.TokenManager) http.Handler {
	return tm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.CurrentUser(r)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(u.ID))
	}))
}

func TestNewTokenManager_RejectsBadKeys(t *testing.T) {
	_, err := auth.NewTokenManager("short", testBlockKey, time.Hour, zap.NewNop())
	assert.Error(t, err)

	_, err = auth.NewTokenManager(testHashKey, "not-an-aes-size", time.Hour, zap.NewNop())
	assert.Error(t, err)

	_, err = auth.NewTokenManager(testHashKey, testBlockKey, 0, zap.NewNop())
	assert.Error(t, err)
}

func TestMintParse_RoundTrip(t *testing.T) {
	tm := newTestTokenManager(t)
	id := primitive.NewObjectID().Hex()

	token, err := tm.Mint(auth.TokenUser{ID: id, Name: "Ada"})
	require.NoError(t, err)

	u, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Ada", u.Name)
}

func TestMint_RejectsBadUserID(t *testing.T) {
	tm := newTestTokenManager(t)
	_, err := tm.Mint(auth.TokenUser{ID: "nope"})
	assert.Error(t, err)
}

func TestParse_OtherKeysRejected(t *testing.T) {
	tm := newTestTokenManager(t)
	token, err := tm.Mint(auth.TokenUser{ID: primitive.NewObjectID().Hex()})
	require.NoError(t, err)

	other, err := auth.NewTokenManager("another-hash-key-that-is-32-bytes-long", testBlockKey, time.Hour, zap.NewNop())
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRequireSignedIn(t *testing.T) {
	tm := newTestTokenManager(t)
	id := primitive.NewObjectID().Hex()
	token, err := tm.Mint(auth.TokenUser{ID: id})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer garbage", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/documents/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(tm).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, id, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
			}
		})
	}
}

func TestRequireSignedIn_InjectedUser(t *testing.T) {
	tm := newTestTokenManager(t)
	id := primitive.NewObjectID().Hex()

	req := httptest.NewRequest(http.MethodGet, "/documents/x", nil)
	req = auth.WithTestUser(req, &auth.TokenUser{ID: id})
	rec := httptest.NewRecorder()
	protected(tm).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	uid, ok := auth.UserID(req)
	assert.True(t, ok)
	assert.Equal(t, id, uid.Hex())
}
