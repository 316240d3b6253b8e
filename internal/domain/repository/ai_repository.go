package repository

import (
	"context"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
)

type AIService interface {
	AssessAppeal(ctx context.Context, appeal *entity.Appeal) (string, error)
	ClassifyAppeal(ctx context.Context, appeal *entity.Appeal) (valueobject.AIFlag, error)
}
