package dto

import (
	"time"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/service"
)

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

type IdentityResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AuthType    string `json:"authType"`
	IsAdmin     bool   `json:"is_admin"`
}

type SessionResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      IdentityResponse `json:"user"`
}

func ToIdentityResponse(identity entity.Identity, isAdmin bool) IdentityResponse {
	return IdentityResponse{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		AuthType:    string(identity.AuthType),
		IsAdmin:     isAdmin,
	}
}

func ToSessionResponse(session *service.Session) SessionResponse {
	return SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      ToIdentityResponse(session.Identity, session.IsAdmin),
	}
}
