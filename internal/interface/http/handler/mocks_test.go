package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/http/middleware"
	"github.com/ignatzorin/appeals-backend/internal/logger"
	"github.com/ignatzorin/appeals-backend/internal/service"
	"github.com/ignatzorin/appeals-backend/internal/usecase/appeal"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitDiscard()
}

var (
	googleIdentity = entity.Identity{UID: "google-dream", Email: "dream@example.com", AuthType: valueobject.AuthTypeGoogle}
	adminIdentity  = entity.Identity{UID: "google-admin", Email: "admin@example.com", AuthType: valueobject.AuthTypeGoogle}
)

type mockSubmitter struct{ mock.Mock }

func (m *mockSubmitter) Execute(ctx context.Context, identity entity.Identity, input appeal.SubmitAppealInput) (*entity.Appeal, error) {
	args := m.Called(ctx, identity, input)
	if a, ok := args.Get(0).(*entity.Appeal); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLister struct{ mock.Mock }

func (m *mockLister) Execute(ctx context.Context, identity entity.Identity, scope valueobject.ListScope) ([]*entity.Appeal, error) {
	args := m.Called(ctx, identity, scope)
	if a, ok := args.Get(0).([]*entity.Appeal); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGetter struct{ mock.Mock }

func (m *mockGetter) Execute(ctx context.Context, identity entity.Identity, appealID uuid.UUID) (*entity.Appeal, error) {
	args := m.Called(ctx, identity, appealID)
	if a, ok := args.Get(0).(*entity.Appeal); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDecider struct{ mock.Mock }

func (m *mockDecider) Execute(ctx context.Context, identity entity.Identity, appealID uuid.UUID, verdict, note string) (*entity.Appeal, error) {
	args := m.Called(ctx, identity, appealID, verdict, note)
	if a, ok := args.Get(0).(*entity.Appeal); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAnalyzer struct{ mock.Mock }

func (m *mockAnalyzer) Execute(ctx context.Context, identity entity.Identity, appealID uuid.UUID) (appeal.Insight, error) {
	args := m.Called(ctx, identity, appealID)
	return args.Get(0).(appeal.Insight), args.Error(1)
}

type mockSessionIssuer struct{ mock.Mock }

func (m *mockSessionIssuer) SignInWithGoogle(ctx context.Context, idToken string) (*service.Session, error) {
	args := m.Called(ctx, idToken)
	if s, ok := args.Get(0).(*service.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionIssuer) SignInAsGuest(ctx context.Context) (*service.Session, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*service.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionIssuer) IsAdmin(identity entity.Identity) bool {
	return m.Called(identity).Bool(0)
}

// withIdentity подменяет AuthMiddleware в тестах.
func withIdentity(identity entity.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identity.IsAnonymous() {
			c.Set(middleware.ContextIdentityKey, identity)
		}
		c.Next()
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func perform(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}
