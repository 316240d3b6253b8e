package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/dto"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/response"
	"github.com/ignatzorin/appeals-backend/internal/service"
)

// SessionIssuer выдаёт сессии (service.AuthService).
type SessionIssuer interface {
	SignInWithGoogle(ctx context.Context, idToken string) (*service.Session, error)
	SignInAsGuest(ctx context.Context) (*service.Session, error)
	IsAdmin(identity entity.Identity) bool
}

type AuthHandler struct {
	auth SessionIssuer
}

func NewAuthHandler(auth SessionIssuer) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Google обрабатывает POST /api/auth/google.
func (h *AuthHandler) Google(c *gin.Context) {
	var req dto.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "id_token обязателен")
		return
	}

	session, err := h.auth.SignInWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToSessionResponse(session))
}

// Guest обрабатывает POST /api/auth/guest.
func (h *AuthHandler) Guest(c *gin.Context) {
	session, err := h.auth.SignInAsGuest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToSessionResponse(session))
}

// Me обрабатывает GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	current := identity(c)
	if current.IsAnonymous() {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	response.Success(c, dto.ToIdentityResponse(current, h.auth.IsAdmin(current)))
}
