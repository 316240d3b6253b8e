package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
)

type AppealRepository interface {
	Create(ctx context.Context, appeal *entity.Appeal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appeal, error)
	// Decide атомарно переводит ожидающую апелляцию в итоговый статус.
	// Если решение уже вынесено, возвращает apperror.ErrAppealAlreadyClosed.
	Decide(ctx context.Context, id uuid.UUID, decision Decision) (*entity.Appeal, error)
	ListByUID(ctx context.Context, uid string) ([]*entity.Appeal, error)
	ListAll(ctx context.Context) ([]*entity.Appeal, error)
	SetAIFlag(ctx context.Context, id uuid.UUID, flag valueobject.AIFlag) error
}

type Decision struct {
	Verdict   valueobject.Verdict
	Note      string
	DecidedBy string
	DecidedAt time.Time
}
