package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/appeals-backend/internal/interface/http/response"
)

// ContextUUIDPrefix: префикс ключа, под которым UUIDValidator кладёт разобранный параметр.
const ContextUUIDPrefix = "uuid:"

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID.
// Использование: router.GET("/appeals/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			response.BadRequest(c, "параметр "+paramName+" обязателен")
			c.Abort()
			return
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			response.BadRequest(c, "параметр "+paramName+" должен быть валидным UUID")
			c.Abort()
			return
		}

		c.Set(ContextUUIDPrefix+paramName, id)
		c.Next()
	}
}

// UUIDParam возвращает параметр, проверенный UUIDValidator.
func UUIDParam(c *gin.Context, paramName string) (uuid.UUID, bool) {
	value, exists := c.Get(ContextUUIDPrefix + paramName)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
