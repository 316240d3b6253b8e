package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/feed"
	"github.com/ignatzorin/appeals-backend/internal/http/middleware"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/dto"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/response"
	"github.com/ignatzorin/appeals-backend/internal/logger"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
	"github.com/ignatzorin/appeals-backend/internal/ws"
)

const snapshotMessageType = "appeals.snapshot"

// AppealWatcher открывает живую подписку (appeal.WatchAppealsUseCase).
type AppealWatcher interface {
	Execute(ctx context.Context, identity entity.Identity, scope valueobject.ListScope) (*feed.Subscription, error)
}

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub      *ws.Hub
	auth     middleware.Authenticator
	watcher  AppealWatcher
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Пустой allowedOrigins разрешает любой Origin.
func NewWSHandler(hub *ws.Hub, auth middleware.Authenticator, watcher AppealWatcher, allowedOrigins []string) *WSHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = struct{}{}
	}

	return &WSHandler{
		hub:     hub,
		auth:    auth,
		watcher: watcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...&scope=mine|all.
// Браузерный WebSocket не умеет в заголовки, поэтому токен приходит в query.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		response.Unauthorized(c, "сессионный токен обязателен")
		return
	}

	identity, err := h.auth.Identify(rawToken)
	if err != nil || identity.IsAnonymous() {
		response.Unauthorized(c, "невалидная или истёкшая сессия")
		return
	}

	scope, err := valueobject.NewListScope(c.Query("scope"))
	if err != nil {
		response.Error(c, err)
		return
	}

	// Права проверяются до апгрейда, чтобы клиент получил обычный HTTP ответ.
	ctx := c.Request.Context()
	sub, err := h.watcher.Execute(ctx, identity, scope)
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Unsubscribe()
		logger.Get().WithFields(logrus.Fields{"uid": identity.UID, "error": err.Error()}).Warn("ws: апгрейд не удался")
		return
	}

	ws.NewClient(conn, h.hub, identity.UID, sub, EncodeSnapshot).Run(ctx)
}

// EncodeSnapshot сериализует снимок ленты в сообщение {"type":"appeals.snapshot","data":[...]}.
// Ошибка загрузки отдаётся клиенту без подробностей хранилища.
func EncodeSnapshot(snap feed.Snapshot) ([]byte, error) {
	msg := dto.SnapshotMessage{
		Type: snapshotMessageType,
		Data: dto.ToAppealResponses(snap.Appeals),
	}

	if snap.Err != nil {
		var appErr *apperror.AppError
		if errors.As(snap.Err, &appErr) {
			msg.Error = &dto.SnapshotError{Code: string(appErr.Code), Message: appErr.Message}
		} else {
			msg.Error = &dto.SnapshotError{Code: string(apperror.ErrCodeInternal), Message: "внутренняя ошибка сервера"}
		}
	}

	return json.Marshal(msg)
}
