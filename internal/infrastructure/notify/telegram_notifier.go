package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
)

// TelegramNotifier пишет администратору в Telegram о каждой новой апелляции.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

var _ repository.AdminNotifier = (*TelegramNotifier)(nil)

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithEndpoint(token, chatID, tgbotapi.APIEndpoint)
}

// NewTelegramNotifierWithEndpoint позволяет указать свой адрес Bot API (прокси, тесты).
func NewTelegramNotifierWithEndpoint(token string, chatID int64, endpoint string) (*TelegramNotifier, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("telegram: токен бота пуст")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram: не задан чат администратора")
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("telegram: не удалось создать бота: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (n *TelegramNotifier) AppealSubmitted(ctx context.Context, appeal *entity.Appeal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatAppeal(appeal))
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: не удалось отправить сообщение: %w", err)
	}
	return nil
}

func formatAppeal(appeal *entity.Appeal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Новая апелляция от %s\n", appeal.Username)
	fmt.Fprintf(&b, "Причина бана: %s\n", appeal.Reason)
	fmt.Fprintf(&b, "Почта: %s (%s)\n", appeal.UserEmail, appeal.AuthType)
	if appeal.DiscordTag != nil {
		fmt.Fprintf(&b, "Discord: %s\n", *appeal.DiscordTag)
	}
	fmt.Fprintf(&b, "Создана: %s\n\n", appeal.CreatedAt().UTC().Format(time.RFC3339))
	b.WriteString(truncate(appeal.Explanation, 1000))
	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
