package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
)

type fakeBotAPI struct {
	mu   sync.Mutex
	sent []map[string]string
}

func (f *fakeBotAPI) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"appeals","username":"appeals_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, map[string]string{
			"chat_id": r.PostForm.Get("chat_id"),
			"text":    r.PostForm.Get("text"),
		})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"not found"}`))
	}
}

func TestTelegramNotifier_AppealSubmitted(t *testing.T) {
	fake := &fakeBotAPI{}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	defer srv.Close()

	n, err := NewTelegramNotifierWithEndpoint("123:abc", 42, srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	tag := "dream#0001"
	appeal := &entity.Appeal{
		ID:          uuid.New(),
		Username:    "Dream",
		Reason:      "x-ray",
		Explanation: "sorry",
		DiscordTag:  &tag,
		UserEmail:   "dream@example.com",
		AuthType:    valueobject.AuthTypeGoogle,
		Timestamp:   time.Now().UnixMilli(),
	}
	require.NoError(t, n.AppealSubmitted(context.Background(), appeal))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "42", fake.sent[0]["chat_id"])
	assert.Contains(t, fake.sent[0]["text"], "Dream")
	assert.Contains(t, fake.sent[0]["text"], "x-ray")
	assert.Contains(t, fake.sent[0]["text"], "dream#0001")
}

func TestTelegramNotifier_CancelledContext(t *testing.T) {
	fake := &fakeBotAPI{}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	defer srv.Close()

	n, err := NewTelegramNotifierWithEndpoint("123:abc", 42, srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, n.AppealSubmitted(ctx, &entity.Appeal{}))
	assert.Empty(t, fake.sent)
}

func TestNewTelegramNotifier_Validation(t *testing.T) {
	_, err := NewTelegramNotifier(" ", 42)
	assert.Error(t, err)
	_, err = NewTelegramNotifier("123:abc", 0)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abc", 2))
}
