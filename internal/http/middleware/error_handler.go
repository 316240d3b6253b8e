package middleware

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/interface/http/response"
	"github.com/ignatzorin/appeals-backend/internal/logger"
)

// ErrorHandler логирует ошибки, накопленные в c.Errors, и отправляет их в Sentry.
// Если обработчик ничего не ответил, клиент получает замаскированную 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, ginErr := range c.Errors {
			logger.Get().WithFields(logrus.Fields{
				"error":  ginErr.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
				"status": c.Writer.Status(),
			}).Error("Request error")

			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("path", c.FullPath())
					scope.SetLevel(sentry.LevelError)
					hub.CaptureException(ginErr.Err)
				})
			}
		}

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, response.Response{
				Success: false,
				Error: &response.ErrorInfo{
					Code:    "INTERNAL_ERROR",
					Message: "внутренняя ошибка сервера",
				},
			})
		}
	}
}
