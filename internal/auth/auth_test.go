package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour, nil)
	raw, err := tokens.Issue(1, "admin", "123 Admin St")
	require.NoError(t, err)

	claims, err := tokens.ParseBearer("Bearer " + raw)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.ID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "123 Admin St", claims.Address)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestTokens_Expired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Now().Add(-2 * time.Hour))
	tokens := NewTokens("secret", time.Hour, clock)
	raw, err := tokens.Issue(1, "admin", "")
	require.NoError(t, err)

	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, "Token expired", err.Error())
}

func TestTokens_Invalid(t *testing.T) {
	tokens := NewTokens("secret", time.Hour, nil)
	other := NewTokens("other-secret", time.Hour, nil)
	foreign, err := other.Issue(1, "admin", "")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{ID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"alg none", unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokens_ParseBearer_Missing(t *testing.T) {
	tokens := NewTokens("secret", time.Hour, nil)
	for _, header := range []string{"", "Token abc", "Bearer ", "bearer abc"} {
		_, err := tokens.ParseBearer(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := NewTokens("secret", time.Hour, nil)
	r := gin.New()
	r.GET("/api/me", Middleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": ClaimsFrom(c).ID})
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Missing token"}`, w.Body.String())
	})

	t.Run("invalid", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer junk")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
	})

	t.Run("valid", func(t *testing.T) {
		raw, err := tokens.Issue(42, "u", "")
		require.NoError(t, err)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":42}`, w.Body.String())
	})
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)
	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("plaintext", "plaintext"))
}
