package ai

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/logger"
)

// Model описывает клиент модели (internal/ai.Client).
type Model interface {
	AssessAppeal(ctx context.Context, appeal *entity.Appeal) (string, error)
	ClassifyAppeal(ctx context.Context, appeal *entity.Appeal) (valueobject.AIFlag, error)
}

// InsightStore хранит готовые оценки (Redis). Может отсутствовать.
type InsightStore interface {
	Get(ctx context.Context, id uuid.UUID) (string, bool, error)
	Set(ctx context.Context, id uuid.UUID, text string) error
}

// AIServiceAdapter добавляет к клиенту модели кэширование оценок.
// Текст апелляции не меняется, поэтому оценку можно хранить по id.
type AIServiceAdapter struct {
	model Model
	cache InsightStore
}

var _ repository.AIService = (*AIServiceAdapter)(nil)

// NewAIServiceAdapter возвращает nil, если модель не настроена.
func NewAIServiceAdapter(model Model, cache InsightStore) *AIServiceAdapter {
	if model == nil {
		return nil
	}
	return &AIServiceAdapter{model: model, cache: cache}
}

func (a *AIServiceAdapter) AssessAppeal(ctx context.Context, appeal *entity.Appeal) (string, error) {
	if a.cache != nil {
		text, ok, err := a.cache.Get(ctx, appeal.ID)
		if err != nil {
			logger.Get().WithFields(logrus.Fields{"appeal_id": appeal.ID, "error": err.Error()}).Warn("кэш оценок недоступен")
		} else if ok {
			return text, nil
		}
	}

	text, err := a.model.AssessAppeal(ctx, appeal)
	if err != nil {
		return "", err
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, appeal.ID, text); err != nil {
			logger.Get().WithFields(logrus.Fields{"appeal_id": appeal.ID, "error": err.Error()}).Warn("не удалось сохранить оценку в кэш")
		}
	}
	return text, nil
}

func (a *AIServiceAdapter) ClassifyAppeal(ctx context.Context, appeal *entity.Appeal) (valueobject.AIFlag, error) {
	return a.model.ClassifyAppeal(ctx, appeal)
}
