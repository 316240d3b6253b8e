package appeal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/policy"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/logger"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

// InsightUnavailable: текст, который видит администратор при любой ошибке AI.
const InsightUnavailable = "AI analysis is currently unavailable."

// Insight содержит рекомендательную оценку апелляции. На статус не влияет.
type Insight struct {
	Text      string
	Available bool
}

type AnalyzeAppealUseCase struct {
	appealRepo   repository.AppealRepository
	aiService    repository.AIService
	admins       policy.AdminPolicy
	storeTimeout time.Duration
}

// NewAnalyzeAppealUseCase создаёт usecase. aiService может быть nil, тогда оценка всегда недоступна.
func NewAnalyzeAppealUseCase(appealRepo repository.AppealRepository, aiService repository.AIService, admins policy.AdminPolicy, storeTimeout time.Duration) *AnalyzeAppealUseCase {
	return &AnalyzeAppealUseCase{
		appealRepo:   appealRepo,
		aiService:    aiService,
		admins:       admins,
		storeTimeout: storeTimeout,
	}
}

// Execute возвращает ошибку только при проблемах с правами или поиском апелляции.
// Сбой модели превращается в Insight{Available: false}.
func (uc *AnalyzeAppealUseCase) Execute(ctx context.Context, identity entity.Identity, appealID uuid.UUID) (Insight, error) {
	if identity.IsAnonymous() {
		return Insight{}, apperror.ErrUnauthorized
	}
	if !uc.admins.IsAdmin(identity) {
		return Insight{}, apperror.ErrForbidden
	}

	storeCtx, cancel := storeContext(ctx, uc.storeTimeout)
	appeal, err := uc.appealRepo.FindByID(storeCtx, appealID)
	cancel()
	if err != nil {
		return Insight{}, storeError(err, "не удалось получить апелляцию")
	}

	if uc.aiService == nil {
		return Insight{Text: InsightUnavailable}, nil
	}

	text, err := uc.aiService.AssessAppeal(ctx, appeal)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		fields := logrus.Fields{"appeal_id": appeal.ID}
		if err != nil {
			fields["error"] = err.Error()
		}
		logger.Get().WithFields(fields).Warn("AI оценка апелляции недоступна")
		return Insight{Text: InsightUnavailable}, nil
	}

	return Insight{Text: text, Available: true}, nil
}
