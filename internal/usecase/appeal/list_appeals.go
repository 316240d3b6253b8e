package appeal

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/policy"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

type ListAppealsUseCase struct {
	appealRepo   repository.AppealRepository
	admins       policy.AdminPolicy
	storeTimeout time.Duration
}

func NewListAppealsUseCase(appealRepo repository.AppealRepository, admins policy.AdminPolicy, storeTimeout time.Duration) *ListAppealsUseCase {
	return &ListAppealsUseCase{appealRepo: appealRepo, admins: admins, storeTimeout: storeTimeout}
}

// Execute возвращает апелляции в порядке убывания времени создания.
// scope=mine отдаёт только записи с uid вызывающего, scope=all доступен администратору.
func (uc *ListAppealsUseCase) Execute(ctx context.Context, identity entity.Identity, scope valueobject.ListScope) ([]*entity.Appeal, error) {
	load, err := listLoader(uc.appealRepo, uc.admins, identity, scope)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := storeContext(ctx, uc.storeTimeout)
	defer cancel()
	return load(storeCtx)
}

// listLoader проверяет права и возвращает функцию чтения выборки.
// Используется и разовым списком, и живой подпиской.
func listLoader(repo repository.AppealRepository, admins policy.AdminPolicy, identity entity.Identity, scope valueobject.ListScope) (func(ctx context.Context) ([]*entity.Appeal, error), error) {
	if identity.IsAnonymous() {
		return nil, apperror.ErrUnauthorized
	}

	switch scope {
	case valueobject.ScopeAll:
		if !admins.IsAdmin(identity) {
			return nil, apperror.ErrForbidden
		}
		return func(ctx context.Context) ([]*entity.Appeal, error) {
			appeals, err := repo.ListAll(ctx)
			if err != nil {
				return nil, storeError(err, "не удалось получить список апелляций")
			}
			sortNewestFirst(appeals)
			return appeals, nil
		}, nil
	case valueobject.ScopeMine:
		uid := identity.UID
		return func(ctx context.Context) ([]*entity.Appeal, error) {
			appeals, err := repo.ListByUID(ctx, uid)
			if err != nil {
				return nil, storeError(err, "не удалось получить список апелляций")
			}
			// Хранилище фильтрует по uid, здесь повторная проверка на случай ошибки в запросе.
			own := appeals[:0]
			for _, a := range appeals {
				if a.IsOwnedBy(uid) {
					own = append(own, a)
				}
			}
			sortNewestFirst(own)
			return own, nil
		}, nil
	}
	return nil, apperror.New(apperror.ErrCodeValidation, "scope должен быть mine или all")
}

func sortNewestFirst(appeals []*entity.Appeal) {
	sort.SliceStable(appeals, func(i, j int) bool {
		return appeals[i].Timestamp > appeals[j].Timestamp
	})
}

type GetAppealUseCase struct {
	appealRepo   repository.AppealRepository
	admins       policy.AdminPolicy
	storeTimeout time.Duration
}

func NewGetAppealUseCase(appealRepo repository.AppealRepository, admins policy.AdminPolicy, storeTimeout time.Duration) *GetAppealUseCase {
	return &GetAppealUseCase{appealRepo: appealRepo, admins: admins, storeTimeout: storeTimeout}
}

// Execute отдаёт апелляцию владельцу или администратору.
// Чужую апелляцию не раскрываем: для остальных она не найдена.
func (uc *GetAppealUseCase) Execute(ctx context.Context, identity entity.Identity, appealID uuid.UUID) (*entity.Appeal, error) {
	if identity.IsAnonymous() {
		return nil, apperror.ErrUnauthorized
	}

	storeCtx, cancel := storeContext(ctx, uc.storeTimeout)
	defer cancel()
	appeal, err := uc.appealRepo.FindByID(storeCtx, appealID)
	if err != nil {
		return nil, storeError(err, "не удалось получить апелляцию")
	}

	if !appeal.IsOwnedBy(identity.UID) && !uc.admins.IsAdmin(identity) {
		return nil, apperror.ErrAppealNotFound
	}
	return appeal, nil
}
