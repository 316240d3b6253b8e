package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ignatzorin/appeals-backend/internal/logger"
)

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// GoogleClaims содержит нужные нам поля ID токена Google.
type GoogleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// GoogleIdentity описывает проверенного пользователя Google.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier проверяет ID токены Google по опубликованным ключам JWKS.
type GoogleVerifier struct {
	jwks     *keyfunc.JWKS
	clientID string
	now      func() time.Time
}

// NewGoogleVerifier загружает JWKS и держит ключи актуальными в фоне.
func NewGoogleVerifier(ctx context.Context, jwksURL, clientID string) (*GoogleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("google: не задан GOOGLE_CLIENT_ID")
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Get().WithField("error", err.Error()).Warn("google: не удалось обновить JWKS")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("google: не удалось загрузить JWKS: %w", err)
	}

	return &GoogleVerifier{jwks: jwks, clientID: clientID, now: time.Now}, nil
}

// Verify проверяет подпись, издателя, аудиторию и срок действия токена.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	var claims GoogleClaims
	_, err := jwt.ParseWithClaims(idToken, &claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}

	if _, ok := googleIssuers[claims.Issuer]; !ok {
		return nil, fmt.Errorf("google: неожиданный издатель %q", claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("google: пустой sub")
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, fmt.Errorf("google: email не подтверждён")
	}

	return &GoogleIdentity{
		Subject: claims.Subject,
		Email:   strings.ToLower(claims.Email),
		Name:    claims.Name,
	}, nil
}

// Close останавливает фоновое обновление ключей.
func (v *GoogleVerifier) Close() {
	v.jwks.EndBackground()
}
