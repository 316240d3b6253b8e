package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/appeals-backend/internal/domain/valueobject"
	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
	"github.com/ignatzorin/appeals-backend/internal/validation"
)

type Appeal struct {
	ID          uuid.UUID
	Username    string
	Reason      string
	Explanation string
	DiscordTag  *string
	UserEmail   string
	UID         string
	AuthType    valueobject.AuthType
	// Timestamp: время создания в миллисекундах Unix, не меняется.
	Timestamp  int64
	Status     valueobject.AppealStatus
	AdminNote  *string
	DecidedBy  *string
	DecidedAt  *time.Time
	AIFlag     *valueobject.AIFlag
	AIVerified bool
}

// AppealDraft содержит данные формы до записи в хранилище.
type AppealDraft struct {
	Username     string
	Reason       string
	Explanation  string
	DiscordTag   *string
	ContactEmail string
}

// NewAppeal проверяет черновик и создаёт ожидающую апелляцию от имени submitter.
func NewAppeal(draft AppealDraft, submitter Identity, now time.Time) (*Appeal, error) {
	if submitter.UID == "" {
		return nil, apperror.ErrUnauthorized
	}
	if !submitter.AuthType.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип авторизации")
	}

	username := strings.TrimSpace(draft.Username)
	reason := strings.TrimSpace(draft.Reason)
	explanation := strings.TrimSpace(draft.Explanation)

	if err := validation.ValidateRequired("username", username, validation.MaxAppealUsernameLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRequired("reason", reason, validation.MaxReasonLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateRequired("explanation", explanation, validation.MaxExplanationLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateOptional("discordTag", draft.DiscordTag, validation.MaxDiscordTagLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	// Гость указывает почту вручную, у вошедшего через Google берём почту из identity.
	email := strings.TrimSpace(submitter.Email)
	if submitter.IsGuest() {
		email = strings.TrimSpace(draft.ContactEmail)
	}
	if email == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "контактный email обязателен")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	var discordTag *string
	if draft.DiscordTag != nil {
		if tag := strings.TrimSpace(*draft.DiscordTag); tag != "" {
			discordTag = &tag
		}
	}

	return &Appeal{
		ID:          uuid.New(),
		Username:    username,
		Reason:      reason,
		Explanation: explanation,
		DiscordTag:  discordTag,
		UserEmail:   strings.ToLower(email),
		UID:         submitter.UID,
		AuthType:    submitter.AuthType,
		Timestamp:   now.UnixMilli(),
		Status:      valueobject.AppealStatusPending,
	}, nil
}

// Decide переводит апелляцию в итоговый статус. Повторное решение запрещено.
// В PostgreSQL то же правило держат условный UPDATE ... WHERE status = 'pending'
// и триггер appeals_guard_decision, сервис через этот метод не проходит.
// Метод задаёт модель перехода для хранилищ в памяти и тестов.
func (a *Appeal) Decide(verdict valueobject.Verdict, note, decidedBy string, now time.Time) error {
	if !verdict.IsTerminal() {
		return apperror.New(apperror.ErrCodeValidation, "решение должно быть approved или denied")
	}
	if !a.Status.CanTransitionTo(verdict) {
		return apperror.ErrAppealAlreadyClosed
	}

	note = NoteOrDefault(verdict, note)
	a.Status = verdict
	a.AdminNote = &note
	a.DecidedBy = &decidedBy
	a.DecidedAt = &now
	return nil
}

// NoteOrDefault подставляет стандартный комментарий, если администратор ничего не написал.
func NoteOrDefault(verdict valueobject.Verdict, note string) string {
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		return trimmed
	}
	return valueobject.DefaultNoteFor(verdict)
}

func (a *Appeal) SetAIFlag(flag valueobject.AIFlag) {
	a.AIFlag = &flag
	a.AIVerified = true
}

func (a *Appeal) IsOwnedBy(uid string) bool {
	return uid != "" && a.UID == uid
}

func (a *Appeal) CreatedAt() time.Time {
	return time.UnixMilli(a.Timestamp)
}
