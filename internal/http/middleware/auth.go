package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/response"
)

// ContextIdentityKey: ключ gin.Context с entity.Identity текущей сессии.
const ContextIdentityKey = "identity"

// Authenticator разбирает сессионный токен (service.AuthService).
type Authenticator interface {
	Identify(token string) (entity.Identity, error)
}

// AuthMiddleware проверяет сессионный токен из заголовка Authorization.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "требуется авторизация")
			c.Abort()
			return
		}

		identity, err := auth.Identify(strings.TrimPrefix(header, "Bearer "))
		if err != nil || identity.IsAnonymous() {
			response.Unauthorized(c, "невалидная или истёкшая сессия")
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// IdentityFrom возвращает identity, положенную AuthMiddleware. Без неё identity анонимная.
func IdentityFrom(c *gin.Context) entity.Identity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return entity.Identity{}
	}
	identity, _ := value.(entity.Identity)
	return identity
}
