package appeal

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/goroutine"
	"github.com/ignatzorin/appeals-backend/internal/logger"
)

const defaultClassifyTimeout = 30 * time.Second

// ClassifyAppealUseCase помечает новую апелляцию как spam или clean.
// Отметка рекомендательная и не влияет на переходы статуса.
type ClassifyAppealUseCase struct {
	appealRepo   repository.AppealRepository
	aiService    repository.AIService
	publisher    repository.ChangePublisher
	storeTimeout time.Duration
	timeout      time.Duration
}

func NewClassifyAppealUseCase(
	appealRepo repository.AppealRepository,
	aiService repository.AIService,
	publisher repository.ChangePublisher,
	storeTimeout time.Duration,
	timeout time.Duration,
) *ClassifyAppealUseCase {
	if timeout <= 0 {
		timeout = defaultClassifyTimeout
	}
	return &ClassifyAppealUseCase{
		appealRepo:   appealRepo,
		aiService:    aiService,
		publisher:    publisher,
		storeTimeout: storeTimeout,
		timeout:      timeout,
	}
}

func (uc *ClassifyAppealUseCase) Execute(ctx context.Context, appeal *entity.Appeal) error {
	flag, err := uc.aiService.ClassifyAppeal(ctx, appeal)
	if err != nil {
		return err
	}

	storeCtx, cancel := storeContext(ctx, uc.storeTimeout)
	defer cancel()
	if err := uc.appealRepo.SetAIFlag(storeCtx, appeal.ID, flag); err != nil {
		return storeError(err, "не удалось сохранить AI отметку")
	}
	appeal.SetAIFlag(flag)

	if uc.publisher != nil {
		uc.publisher.Publish(repository.AppealChange{AppealID: appeal.ID, UID: appeal.UID, Kind: repository.ChangeUpdated})
	}
	return nil
}

// Schedule запускает классификацию в фоне. Ошибки только логируются.
func (uc *ClassifyAppealUseCase) Schedule(appeal *entity.Appeal) {
	if uc.aiService == nil {
		return
	}
	goroutine.SafeGo("classify-appeal", func() {
		ctx, cancel := context.WithTimeout(context.Background(), uc.timeout)
		defer cancel()
		if err := uc.Execute(ctx, appeal); err != nil {
			logger.Get().WithFields(logrus.Fields{
				"appeal_id": appeal.ID,
				"error":     err.Error(),
			}).Warn("не удалось классифицировать апелляцию")
		}
	})
}
