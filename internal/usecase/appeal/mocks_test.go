package appeal_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
	"github.com/ignatzorin/appeals-backend/internal/domain/policy"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

const adminEmail = "admin@example.com"

var (
	admins = policy.NewSingleAdmin(adminEmail)

	adminUser = entity.Identity{UID: "google-admin", Email: "Admin@Example.com", AuthType: valueobject.AuthTypeGoogle}
	dreamUser = entity.Identity{UID: "google-dream", Email: "dream@example.com", AuthType: valueobject.AuthTypeGoogle}
	guestUser = entity.Identity{UID: "guest-0a1b2c3d4e5f", AuthType: valueobject.AuthTypeGuest}
)

// memoryAppealRepository повторяет поведение хранилища: решение принимается один раз.
type memoryAppealRepository struct {
	mu        sync.Mutex
	appeals   map[uuid.UUID]*entity.Appeal
	createErr error
	listErr   error
	block     bool
}

func newMemoryAppealRepository() *memoryAppealRepository {
	return &memoryAppealRepository{appeals: make(map[uuid.UUID]*entity.Appeal)}
}

func clone(a *entity.Appeal) *entity.Appeal {
	c := *a
	return &c
}

func (m *memoryAppealRepository) Create(ctx context.Context, a *entity.Appeal) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appeals[a.ID] = clone(a)
	return nil
}

func (m *memoryAppealRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appeals[id]
	if !ok {
		return nil, apperror.ErrAppealNotFound
	}
	return clone(a), nil
}

func (m *memoryAppealRepository) Decide(ctx context.Context, id uuid.UUID, d repository.Decision) (*entity.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appeals[id]
	if !ok {
		return nil, apperror.ErrAppealNotFound
	}
	next := clone(a)
	if err := next.Decide(d.Verdict, d.Note, d.DecidedBy, d.DecidedAt); err != nil {
		return nil, err
	}
	m.appeals[id] = next
	return clone(next), nil
}

func (m *memoryAppealRepository) ListByUID(ctx context.Context, uid string) ([]*entity.Appeal, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.Appeal
	for _, a := range m.appeals {
		if a.UID == uid {
			result = append(result, clone(a))
		}
	}
	return result, nil
}

func (m *memoryAppealRepository) ListAll(ctx context.Context) ([]*entity.Appeal, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*entity.Appeal, 0, len(m.appeals))
	for _, a := range m.appeals {
		result = append(result, clone(a))
	}
	return result, nil
}

func (m *memoryAppealRepository) SetAIFlag(ctx context.Context, id uuid.UUID, flag valueobject.AIFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appeals[id]
	if !ok {
		return apperror.ErrAppealNotFound
	}
	a.SetAIFlag(flag)
	return nil
}

func (m *memoryAppealRepository) get(id uuid.UUID) *entity.Appeal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.appeals[id]; ok {
		return clone(a)
	}
	return nil
}

type mockAIService struct {
	assessment string
	flag       valueobject.AIFlag
	err        error
}

func (m *mockAIService) AssessAppeal(ctx context.Context, appeal *entity.Appeal) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.assessment, nil
}

func (m *mockAIService) ClassifyAppeal(ctx context.Context, appeal *entity.Appeal) (valueobject.AIFlag, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.flag, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []repository.AppealChange
}

func (p *recordingPublisher) Publish(change repository.AppealChange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
}

func (p *recordingPublisher) all() []repository.AppealChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]repository.AppealChange(nil), p.changes...)
}

type chanNotifier struct {
	got chan *entity.Appeal
	err error
}

func (n *chanNotifier) AppealSubmitted(ctx context.Context, appeal *entity.Appeal) error {
	n.got <- appeal
	return n.err
}

type chanClassifier struct {
	got chan *entity.Appeal
}

func (c *chanClassifier) Schedule(appeal *entity.Appeal) {
	c.got <- appeal
}
