package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/policy"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/logger"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

const guestUIDPrefix = "guest-"

// IDTokenVerifier проверяет ID токен внешнего провайдера.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// Session описывает выданный клиенту сессионный токен.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  entity.Identity
	IsAdmin   bool
}

// AuthService выдаёт сессии пользователям Google и гостям.
type AuthService struct {
	verifier IDTokenVerifier
	tokens   *TokenManager
	admins   policy.AdminPolicy
}

// NewAuthService создаёт сервис аутентификации. verifier может быть nil,
// тогда вход через Google недоступен.
func NewAuthService(verifier IDTokenVerifier, tokens *TokenManager, admins policy.AdminPolicy) *AuthService {
	return &AuthService{verifier: verifier, tokens: tokens, admins: admins}
}

// SignInWithGoogle обменивает ID токен Google на сессию.
func (s *AuthService) SignInWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "id_token обязателен")
	}
	if s.verifier == nil {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "вход через Google не настроен")
	}

	google, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		logger.Get().WithField("error", err.Error()).Warn("auth: ID токен Google отклонён")
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, apperror.ErrInvalidIDToken.Message)
	}

	return s.issue(entity.Identity{
		UID:         google.Subject,
		Email:       google.Email,
		DisplayName: google.Name,
		AuthType:    valueobject.AuthTypeGoogle,
	})
}

// SignInAsGuest создаёт гостевую сессию со случайным uid.
func (s *AuthService) SignInAsGuest(ctx context.Context) (*Session, error) {
	uid, err := newGuestUID()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать гостевую сессию")
	}
	return s.issue(entity.Identity{
		UID:         uid,
		DisplayName: "Guest",
		AuthType:    valueobject.AuthTypeGuest,
	})
}

// Identify разбирает сессионный токен.
func (s *AuthService) Identify(token string) (entity.Identity, error) {
	identity, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return entity.Identity{}, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "невалидная или истёкшая сессия")
	}
	return identity, nil
}

func (s *AuthService) IsAdmin(identity entity.Identity) bool {
	return s.admins.IsAdmin(identity)
}

func (s *AuthService) issue(identity entity.Identity) (*Session, error) {
	token, exp, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}

	isAdmin := s.admins.IsAdmin(identity)
	logger.Get().WithFields(logrus.Fields{
		"uid":       identity.UID,
		"auth_type": identity.AuthType,
		"is_admin":  isAdmin,
	}).Info("auth: сессия выдана")

	return &Session{Token: token, ExpiresAt: exp, Identity: identity, IsAdmin: isAdmin}, nil
}

func newGuestUID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("guest uid: %w", err)
	}
	return guestUIDPrefix + hex.EncodeToString(buf), nil
}
