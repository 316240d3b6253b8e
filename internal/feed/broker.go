package feed

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/logger"
)

// Loader перечитывает из хранилища актуальный список для подписки.
type Loader func(ctx context.Context) ([]*entity.Appeal, error)

// Filter определяет, какие изменения интересны подписке.
type Filter struct {
	UID string
	All bool
}

func (f Filter) matches(change repository.AppealChange) bool {
	if change.Kind == repository.ChangeResync {
		return true
	}
	return f.All || (f.UID != "" && change.UID == f.UID)
}

// Snapshot хранит полное упорядоченное состояние выборки на момент At.
type Snapshot struct {
	Appeals []*entity.Appeal
	Err     error
	At      time.Time
}

// Broker раздаёт подпискам свежие снимки после каждого изменения.
type Broker struct {
	mu          sync.RWMutex
	subs        map[uint64]*Subscription
	nextID      uint64
	events      chan repository.AppealChange
	resync      chan struct{}
	loadTimeout time.Duration
}

// NewBroker создаёт брокер. Run должен быть запущен отдельно.
func NewBroker(loadTimeout time.Duration) *Broker {
	if loadTimeout <= 0 {
		loadTimeout = 5 * time.Second
	}
	return &Broker{
		subs:        make(map[uint64]*Subscription),
		events:      make(chan repository.AppealChange, 64),
		resync:      make(chan struct{}, 1),
		loadTimeout: loadTimeout,
	}
}

// Run обрабатывает изменения по одному, чтобы снимки приходили по порядку.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return
		case change := <-b.events:
			b.dispatch(ctx, change)
		case <-b.resync:
			b.drain()
			b.dispatch(ctx, repository.AppealChange{Kind: repository.ChangeResync})
		}
	}
}

// Publish реализует repository.ChangePublisher и никогда не ждёт раздачи.
// При переполненной очереди изменения схлопываются в одну пересборку всех подписок.
func (b *Broker) Publish(change repository.AppealChange) {
	select {
	case b.events <- change:
		return
	default:
	}
	select {
	case b.resync <- struct{}{}:
	default:
	}
}

// drain выбрасывает накопленные изменения: их покрывает пересборка.
func (b *Broker) drain() {
	for {
		select {
		case <-b.events:
		default:
			return
		}
	}
}

// Subscribe регистрирует подписку и сразу отправляет начальный снимок.
// Подписка снимается при отмене ctx или вызове Unsubscribe.
func (b *Broker) Subscribe(ctx context.Context, filter Filter, load Loader) *Subscription {
	b.mu.Lock()
	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		filter: filter,
		load:   load,
		ch:     make(chan Snapshot, 1),
		stop:   make(chan struct{}),
		broker: b,
	}
	b.subs[sub.id] = sub
	b.mu.Unlock()

	sub.refresh(ctx, b.loadTimeout)

	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-sub.stop:
		}
	}()

	return sub
}

// Len возвращает число активных подписок.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) dispatch(ctx context.Context, change repository.AppealChange) {
	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.filter.matches(change) {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		sub.refresh(ctx, b.loadTimeout)
	}
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

func (b *Broker) closeAll() {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// Subscription доставляет поток снимков одному потребителю.
type Subscription struct {
	id     uint64
	filter Filter
	load   Loader
	broker *Broker

	mu       sync.Mutex
	ch       chan Snapshot
	stop     chan struct{}
	isClosed bool
}

// C возвращает канал снимков. Канал закрывается после Unsubscribe.
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// Unsubscribe снимает подписку. Повторный вызов безопасен.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return
	}
	s.isClosed = true
	s.broker.remove(s.id)
	close(s.ch)
	close(s.stop)
}

// refresh перечитывает выборку под мьютексом подписки: последний снимок всегда самый свежий.
func (s *Subscription) refresh(ctx context.Context, timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	appeals, err := s.load(loadCtx)
	if err != nil && logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"subscription": s.id,
			"uid":          s.filter.UID,
			"error":        err.Error(),
		}).Warn("feed: не удалось обновить снимок")
	}

	snap := Snapshot{Appeals: appeals, Err: err, At: time.Now()}

	// Медленный потребитель получает только последний снимок.
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- snap
	}
}
