package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/http/middleware"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/response"
)

func identity(c *gin.Context) entity.Identity {
	return middleware.IdentityFrom(c)
}

// appealIDParam берёт id, уже проверенный UUIDValidator, иначе разбирает сам.
func appealIDParam(c *gin.Context) (uuid.UUID, bool) {
	if id, ok := middleware.UUIDParam(c, "id"); ok {
		return id, true
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "параметр id должен быть валидным UUID")
		return uuid.Nil, false
	}
	return id, true
}
