package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/logger"
)

// AppealChangesChannel: канал NOTIFY, в который пишет триггер appeals_notify_change.
const AppealChangesChannel = "appeal_changes"

const listenerPingInterval = 90 * time.Second

// AppealChangeListener слушает NOTIFY из PostgreSQL и передаёт изменения в ленту.
type AppealChangeListener struct {
	dsn       string
	publisher repository.ChangePublisher
}

func NewAppealChangeListener(dsn string, publisher repository.ChangePublisher) *AppealChangeListener {
	return &AppealChangeListener{dsn: dsn, publisher: publisher}
}

// Run блокируется до отмены ctx. pq.Listener сам переподключается,
// после переподключения все подписки перечитываются.
func (l *AppealChangeListener) Run(ctx context.Context) error {
	log := logger.Get()
	listener := pq.NewListener(l.dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.WithFields(logrus.Fields{"event": ev, "error": err.Error()}).Warn("appeal feed: событие слушателя")
		}
	})
	defer listener.Close()

	if err := listener.Listen(AppealChangesChannel); err != nil {
		return fmt.Errorf("appeal feed: не удалось подписаться на %s: %w", AppealChangesChannel, err)
	}
	log.WithField("channel", AppealChangesChannel).Info("appeal feed: слушаем изменения")

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-listener.Notify:
			if !ok {
				return nil
			}
			if n == nil {
				// Соединение восстановлено, часть уведомлений могла потеряться.
				l.publisher.Publish(repository.AppealChange{Kind: repository.ChangeResync})
				continue
			}
			change, err := parseChange(n.Extra)
			if err != nil {
				log.WithFields(logrus.Fields{"payload": n.Extra, "error": err.Error()}).Warn("appeal feed: некорректное уведомление")
				continue
			}
			l.publisher.Publish(change)
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					log.WithField("error", err.Error()).Warn("appeal feed: ping не прошёл")
				}
			}()
		}
	}
}

func parseChange(payload string) (repository.AppealChange, error) {
	var change repository.AppealChange
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return change, err
	}
	if change.UID == "" {
		return change, fmt.Errorf("пустой uid")
	}
	switch change.Kind {
	case repository.ChangeCreated, repository.ChangeUpdated:
	default:
		return change, fmt.Errorf("неизвестный тип изменения %q", change.Kind)
	}
	return change, nil
}
