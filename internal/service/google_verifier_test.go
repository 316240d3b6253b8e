package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/appeals-backend/internal/logger"
)

const testClientID = "appeals-client.apps.googleusercontent.com"

type fakeGoogle struct {
	key *rsa.PrivateKey
	srv *httptest.Server
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "test-kid",
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(srv.Close)
	return &fakeGoogle{key: key, srv: srv}
}

func (g *fakeGoogle) sign(t *testing.T, claims GoogleClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-kid"
	signed, err := token.SignedString(g.key)
	require.NoError(t, err)
	return signed
}

func validClaims() GoogleClaims {
	return GoogleClaims{
		Email:         "Dream@Example.com",
		EmailVerified: true,
		Name:          "Dream",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "1234567890",
			Audience:  jwt.ClaimStrings{testClientID},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newTestVerifier(t *testing.T, g *fakeGoogle) *GoogleVerifier {
	t.Helper()
	logger.InitDiscard()
	v, err := NewGoogleVerifier(context.Background(), g.srv.URL, testClientID)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

func TestGoogleVerifier_Valid(t *testing.T) {
	g := newFakeGoogle(t)
	v := newTestVerifier(t, g)

	identity, err := v.Verify(context.Background(), g.sign(t, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "1234567890", identity.Subject)
	assert.Equal(t, "dream@example.com", identity.Email)
	assert.Equal(t, "Dream", identity.Name)
}

func TestGoogleVerifier_Rejects(t *testing.T) {
	g := newFakeGoogle(t)
	v := newTestVerifier(t, g)

	cases := map[string]func(c *GoogleClaims){
		"wrong audience": func(c *GoogleClaims) { c.Audience = jwt.ClaimStrings{"someone-else"} },
		"wrong issuer":   func(c *GoogleClaims) { c.Issuer = "https://evil.example.com" },
		"expired":        func(c *GoogleClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour)) },
		"unverified":     func(c *GoogleClaims) { c.EmailVerified = false },
		"no subject":     func(c *GoogleClaims) { c.Subject = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			claims := validClaims()
			mutate(&claims)
			_, err := v.Verify(context.Background(), g.sign(t, claims))
			assert.Error(t, err)
		})
	}
}

func TestGoogleVerifier_ForeignKey(t *testing.T) {
	g := newFakeGoogle(t)
	v := newTestVerifier(t, g)

	other := newFakeGoogle(t)
	_, err := v.Verify(context.Background(), other.sign(t, validClaims()))
	assert.Error(t, err)
}

func TestNewGoogleVerifier_RequiresClientID(t *testing.T) {
	_, err := NewGoogleVerifier(context.Background(), "http://127.0.0.1:1", "")
	assert.Error(t, err)
}
