package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/thermal-policy-host/internal/domain"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func sign(t *testing.T, key *rsa.PrivateKey, scopes map[string]bool, ttl time.Duration) string {
	t.Helper()
	claims := domain.OperatorClaims{
		UserID: "op-1",
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerifyToken(t *testing.T) {
	key := newKey(t)
	v := NewBaseValidator(&key.PublicKey)

	claims, err := v.VerifyToken("Bearer " + sign(t, key, map[string]bool{domain.ScopePolicyRead: true}, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.UserID)
	assert.True(t, claims.HasScope(domain.ScopePolicyRead))
	assert.False(t, claims.HasScope(domain.ScopePolicyWrite))

	_, err = v.VerifyToken(sign(t, key, nil, -time.Minute))
	assert.Error(t, err, "expired")

	_, err = v.VerifyToken(sign(t, newKey(t), nil, time.Hour))
	assert.Error(t, err, "foreign key")

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.VerifyToken(hs)
	assert.Error(t, err, "HMAC is rejected")
}

func TestVerifyTokenRejectsOperatorClaims(t *testing.T) {
	key := newKey(t)
	v := NewBaseValidator(&key.PublicKey)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		claims domain.OperatorClaims
		want   error
	}{
		{"no operator", domain.OperatorClaims{Scopes: map[string]bool{domain.ScopePolicyRead: true}, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, domain.ErrNoOperator},
		{"no scopes", domain.OperatorClaims{UserID: "op-1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, domain.ErrNoScopes},
		{"only revoked scopes", domain.OperatorClaims{UserID: "op-1", Scopes: map[string]bool{domain.ScopeAdmin: false}, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, domain.ErrNoScopes},
		{"unknown scope", domain.OperatorClaims{UserID: "op-1", Scopes: map[string]bool{"agents.kill": true}, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}, domain.ErrUnknownScope},
		{"no expiry", domain.OperatorClaims{UserID: "op-1", Scopes: map[string]bool{domain.ScopePolicyRead: true}}, jwt.ErrTokenRequiredClaimMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, tt.claims).SignedString(key)
			require.NoError(t, err)

			_, err = v.VerifyToken(token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseRSAPublicKey(t *testing.T) {
	key := newKey(t)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	data := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	pub, err := ParseRSAPublicKey(data)
	require.NoError(t, err)
	assert.True(t, key.PublicKey.Equal(pub))

	_, err = ParseRSAPublicKey(nil)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	key := newKey(t)
	mw := NewMiddleware(NewBaseValidator(&key.PublicKey), zap.NewNop())
	h := mw(RequireScope(domain.ScopePolicyWrite)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "op-1", ClaimsFrom(r.Context()).UserID)
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"read only", "Bearer " + sign(t, key, map[string]bool{domain.ScopePolicyRead: true}, time.Hour), http.StatusForbidden},
		{"writer", "Bearer " + sign(t, key, map[string]bool{domain.ScopePolicyWrite: true}, time.Hour), http.StatusNoContent},
		{"admin", "Bearer " + sign(t, key, map[string]bool{domain.ScopeAdmin: true}, time.Hour), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
