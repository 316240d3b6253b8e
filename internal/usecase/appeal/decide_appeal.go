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
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/logger"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
	"github.com/ignatzorin/appeals-backend/internal/validation"
)

type DecideAppealUseCase struct {
	appealRepo   repository.AppealRepository
	admins       policy.AdminPolicy
	publisher    repository.ChangePublisher
	clock        Clock
	storeTimeout time.Duration
}

func NewDecideAppealUseCase(
	appealRepo repository.AppealRepository,
	admins policy.AdminPolicy,
	publisher repository.ChangePublisher,
	clock Clock,
	storeTimeout time.Duration,
) *DecideAppealUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &DecideAppealUseCase{
		appealRepo:   appealRepo,
		admins:       admins,
		publisher:    publisher,
		clock:        clock,
		storeTimeout: storeTimeout,
	}
}

// Execute выносит решение по ожидающей апелляции. Второе решение по той же
// апелляции возвращает apperror.ErrAppealAlreadyClosed и ничего не меняет.
func (uc *DecideAppealUseCase) Execute(ctx context.Context, identity entity.Identity, appealID uuid.UUID, verdict, note string) (*entity.Appeal, error) {
	if identity.IsAnonymous() {
		return nil, apperror.ErrUnauthorized
	}
	if !uc.admins.IsAdmin(identity) {
		return nil, apperror.ErrForbidden
	}

	v, err := valueobject.NewVerdict(verdict)
	if err != nil {
		return nil, err
	}
	note = entity.NoteOrDefault(v, note)
	if err := validation.ValidateLength("adminNote", note, 0, validation.MaxAdminNoteLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	storeCtx, cancel := storeContext(ctx, uc.storeTimeout)
	defer cancel()
	appeal, err := uc.appealRepo.Decide(storeCtx, appealID, repository.Decision{
		Verdict:   v,
		Note:      note,
		DecidedBy: strings.ToLower(strings.TrimSpace(identity.Email)),
		DecidedAt: uc.clock(),
	})
	if err != nil {
		return nil, storeError(err, "не удалось сохранить решение, попробуйте ещё раз")
	}

	logger.Get().WithFields(logrus.Fields{
		"appeal_id": appeal.ID,
		"uid":       appeal.UID,
		"verdict":   v,
	}).Info("решение по апелляции сохранено")

	if uc.publisher != nil {
		uc.publisher.Publish(repository.AppealChange{AppealID: appeal.ID, UID: appeal.UID, Kind: repository.ChangeUpdated})
	}
	return appeal, nil
}
