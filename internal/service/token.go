package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
)

// SessionClaims описывает содержимое сессионного токена.
type SessionClaims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	AuthType string `json:"auth_type"`
	jwt.RegisteredClaims
}

// TokenManager отвечает за выпуск и проверку сессионных JWT.
type TokenManager struct {
	secret     []byte
	sessionTTL time.Duration
	guestTTL   time.Duration
	now        func() time.Time
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, sessionTTL, guestTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		guestTTL:   guestTTL,
		now:        time.Now,
	}
}

// Issue выпускает токен для identity. Гостевые сессии живут дольше:
// клиент хранит их локально вместо входа через Google.
func (m *TokenManager) Issue(identity entity.Identity) (string, time.Time, error) {
	if identity.IsAnonymous() {
		return "", time.Time{}, fmt.Errorf("token: пустой uid")
	}

	now := m.now()
	ttl := m.sessionTTL
	if identity.IsGuest() {
		ttl = m.guestTTL
	}
	exp := now.Add(ttl)

	claims := SessionClaims{
		Email:    identity.Email,
		Name:     identity.DisplayName,
		AuthType: string(identity.AuthType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse проверяет подпись и срок действия и возвращает identity.
func (m *TokenManager) Parse(token string) (entity.Identity, error) {
	var claims SessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return entity.Identity{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return entity.Identity{}, jwt.ErrTokenInvalidClaims
	}

	authType, err := valueobject.NewAuthType(claims.AuthType)
	if err != nil {
		return entity.Identity{}, jwt.ErrTokenInvalidClaims
	}

	return entity.Identity{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		AuthType:    authType,
	}, nil
}
