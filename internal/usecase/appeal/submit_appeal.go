package appeal

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/goroutine"
	"github.com/ignatzorin/appeals-backend/internal/logger"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

const notifyTimeout = 10 * time.Second

type SubmitAppealInput struct {
	Username     string
	Reason       string
	Explanation  string
	DiscordTag   *string
	ContactEmail string
}

// BackgroundClassifier ставит апелляцию в очередь на AI классификацию.
type BackgroundClassifier interface {
	Schedule(appeal *entity.Appeal)
}

type SubmitAppealUseCase struct {
	appealRepo   repository.AppealRepository
	publisher    repository.ChangePublisher
	notifier     repository.AdminNotifier
	classifier   BackgroundClassifier
	clock        Clock
	storeTimeout time.Duration
}

// NewSubmitAppealUseCase создаёт usecase. publisher, notifier и classifier могут быть nil.
func NewSubmitAppealUseCase(
	appealRepo repository.AppealRepository,
	publisher repository.ChangePublisher,
	notifier repository.AdminNotifier,
	classifier BackgroundClassifier,
	clock Clock,
	storeTimeout time.Duration,
) *SubmitAppealUseCase {
	if clock == nil {
		clock = NewMonotonicClock(time.Now)
	}
	return &SubmitAppealUseCase{
		appealRepo:   appealRepo,
		publisher:    publisher,
		notifier:     notifier,
		classifier:   classifier,
		clock:        clock,
		storeTimeout: storeTimeout,
	}
}

func (uc *SubmitAppealUseCase) Execute(ctx context.Context, identity entity.Identity, input SubmitAppealInput) (*entity.Appeal, error) {
	if identity.IsAnonymous() {
		return nil, apperror.ErrUnauthorized
	}

	appeal, err := entity.NewAppeal(entity.AppealDraft{
		Username:     input.Username,
		Reason:       input.Reason,
		Explanation:  input.Explanation,
		DiscordTag:   input.DiscordTag,
		ContactEmail: input.ContactEmail,
	}, identity, uc.clock())
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := storeContext(ctx, uc.storeTimeout)
	defer cancel()
	if err := uc.appealRepo.Create(storeCtx, appeal); err != nil {
		return nil, storeError(err, "не удалось сохранить апелляцию, попробуйте отправить ещё раз")
	}

	logger.Get().WithFields(logrus.Fields{
		"appeal_id": appeal.ID,
		"uid":       appeal.UID,
		"auth_type": appeal.AuthType,
	}).Info("апелляция создана")

	if uc.publisher != nil {
		uc.publisher.Publish(repository.AppealChange{AppealID: appeal.ID, UID: appeal.UID, Kind: repository.ChangeCreated})
	}
	uc.notifyAdmin(*appeal)
	if uc.classifier != nil {
		snapshot := *appeal
		uc.classifier.Schedule(&snapshot)
	}

	return appeal, nil
}

// notifyAdmin отправляет уведомление в фоне. Ошибка только логируется.
func (uc *SubmitAppealUseCase) notifyAdmin(appeal entity.Appeal) {
	if uc.notifier == nil {
		return
	}
	goroutine.SafeGo("notify-admin", func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := uc.notifier.AppealSubmitted(ctx, &appeal); err != nil {
			logger.Get().WithFields(logrus.Fields{
				"appeal_id": appeal.ID,
				"error":     err.Error(),
			}).Warn("не удалось уведомить администратора")
		}
	})
}
