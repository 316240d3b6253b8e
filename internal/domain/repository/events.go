package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
)

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	// ChangeResync просит перечитать все подписки (например, после переподключения к БД).
	ChangeResync ChangeKind = "resync"
)

// AppealChange сообщает об изменении одной апелляции.
type AppealChange struct {
	AppealID uuid.UUID  `json:"id"`
	UID      string     `json:"uid"`
	Kind     ChangeKind `json:"kind"`
}

type ChangePublisher interface {
	Publish(change AppealChange)
}

// AdminNotifier сообщает администратору о новых апелляциях.
type AdminNotifier interface {
	AppealSubmitted(ctx context.Context, appeal *entity.Appeal) error
}
