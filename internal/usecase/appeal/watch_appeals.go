package appeal

import (
	"context"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/policy"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/feed"
)

// Subscriber открывает живые подписки (feed.Broker).
type Subscriber interface {
	Subscribe(ctx context.Context, filter feed.Filter, load feed.Loader) *feed.Subscription
}

type WatchAppealsUseCase struct {
	appealRepo repository.AppealRepository
	admins     policy.AdminPolicy
	subscriber Subscriber
}

func NewWatchAppealsUseCase(appealRepo repository.AppealRepository, admins policy.AdminPolicy, subscriber Subscriber) *WatchAppealsUseCase {
	return &WatchAppealsUseCase{appealRepo: appealRepo, admins: admins, subscriber: subscriber}
}

// Execute открывает подписку с теми же правами, что и список.
// Первый снимок приходит сразу, дальше по одному на каждое изменение выборки.
// Подписка закрывается вызовом Unsubscribe или отменой ctx.
func (uc *WatchAppealsUseCase) Execute(ctx context.Context, identity entity.Identity, scope valueobject.ListScope) (*feed.Subscription, error) {
	load, err := listLoader(uc.appealRepo, uc.admins, identity, scope)
	if err != nil {
		return nil, err
	}

	filter := feed.Filter{UID: identity.UID, All: scope == valueobject.ScopeAll}
	return uc.subscriber.Subscribe(ctx, filter, load), nil
}
