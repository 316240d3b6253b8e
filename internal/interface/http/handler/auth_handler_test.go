package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/dto"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
	"github.com/ignatzorin/appeals-backend/internal/service"
)

func newAuthRouter(identity entity.Identity) (*gin.Engine, *mockSessionIssuer) {
	issuer := &mockSessionIssuer{}
	h := NewAuthHandler(issuer)

	r := gin.New()
	r.POST("/api/auth/google", h.Google)
	r.POST("/api/auth/guest", h.Guest)
	r.GET("/api/auth/me", withIdentity(identity), h.Me)
	return r, issuer
}

func TestAuthHandler_Google(t *testing.T) {
	r, issuer := newAuthRouter(entity.Identity{})
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	issuer.On("SignInWithGoogle", mock.Anything, "google-id-token").Return(&service.Session{
		Token:     "session-token",
		ExpiresAt: expires,
		Identity:  adminIdentity,
		IsAdmin:   true,
	}, nil)

	rec, env := perform(t, r, http.MethodPost, "/api/auth/google", dto.GoogleSignInRequest{IDToken: "google-id-token"})

	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "session-token", got.Token)
	assert.True(t, got.User.IsAdmin)
	assert.Equal(t, "google", got.User.AuthType)
	assert.True(t, expires.Equal(got.ExpiresAt))
}

func TestAuthHandler_Google_Rejected(t *testing.T) {
	r, issuer := newAuthRouter(entity.Identity{})
	issuer.On("SignInWithGoogle", mock.Anything, "forged").Return(nil, apperror.ErrInvalidIDToken)

	rec, env := perform(t, r, http.MethodPost, "/api/auth/google", dto.GoogleSignInRequest{IDToken: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, env = perform(t, r, http.MethodPost, "/api/auth/google", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestAuthHandler_Guest(t *testing.T) {
	r, issuer := newAuthRouter(entity.Identity{})
	guest := entity.Identity{UID: "guest-0a1b2c3d4e5f", DisplayName: "Guest", AuthType: valueobject.AuthTypeGuest}
	issuer.On("SignInAsGuest", mock.Anything).Return(&service.Session{Token: "guest-token", Identity: guest}, nil)

	rec, env := perform(t, r, http.MethodPost, "/api/auth/guest", nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got dto.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "guest-0a1b2c3d4e5f", got.User.UID)
	assert.Equal(t, "guest", got.User.AuthType)
	assert.False(t, got.User.IsAdmin)
}

func TestAuthHandler_Me(t *testing.T) {
	r, issuer := newAuthRouter(googleIdentity)
	issuer.On("IsAdmin", googleIdentity).Return(false)

	rec, env := perform(t, r, http.MethodGet, "/api/auth/me", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.IdentityResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, googleIdentity.UID, got.UID)
	assert.False(t, got.IsAdmin)
}

func TestAuthHandler_Me_Anonymous(t *testing.T) {
	r, _ := newAuthRouter(entity.Identity{})

	rec, _ := perform(t, r, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
