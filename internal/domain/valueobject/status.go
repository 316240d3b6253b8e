package valueobject

import (
	"strings"

	"github.com/ignatzorin/appeals-backend/internal/pkg/apperror"
)

type AppealStatus string

const (
	AppealStatusPending  AppealStatus = "pending"
	AppealStatusApproved AppealStatus = "approved"
	AppealStatusDenied   AppealStatus = "denied"
)

func (s AppealStatus) IsValid() bool {
	switch s {
	case AppealStatusPending, AppealStatusApproved, AppealStatusDenied:
		return true
	}
	return false
}

// IsTerminal сообщает, что решение уже вынесено и статус больше не меняется.
func (s AppealStatus) IsTerminal() bool {
	return s == AppealStatusApproved || s == AppealStatusDenied
}

func (s AppealStatus) CanTransitionTo(newStatus AppealStatus) bool {
	transitions := map[AppealStatus][]AppealStatus{
		AppealStatusPending:  {AppealStatusApproved, AppealStatusDenied},
		AppealStatusApproved: {},
		AppealStatusDenied:   {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewAppealStatus(status string) (AppealStatus, error) {
	s := AppealStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус апелляции")
	}
	return s, nil
}

// Verdict обозначает решение администратора, допустимы только итоговые статусы.
type Verdict = AppealStatus

func NewVerdict(verdict string) (Verdict, error) {
	v := AppealStatus(strings.ToLower(strings.TrimSpace(verdict)))
	if !v.IsTerminal() {
		return "", apperror.New(apperror.ErrCodeValidation, "решение должно быть approved или denied")
	}
	return v, nil
}

// DefaultNoteFor возвращает комментарий администратора по умолчанию.
func DefaultNoteFor(verdict Verdict) string {
	switch verdict {
	case AppealStatusApproved:
		return "Redemption granted."
	case AppealStatusDenied:
		return "Appeal rejected."
	}
	return ""
}

type AuthType string

const (
	AuthTypeGuest  AuthType = "guest"
	AuthTypeGoogle AuthType = "google"
)

func (a AuthType) IsValid() bool {
	return a == AuthTypeGuest || a == AuthTypeGoogle
}

func NewAuthType(authType string) (AuthType, error) {
	a := AuthType(authType)
	if !a.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный тип авторизации")
	}
	return a, nil
}

// AIFlag хранит рекомендательную отметку классификатора, на переходы не влияет.
type AIFlag string

const (
	AIFlagSpam  AIFlag = "spam"
	AIFlagClean AIFlag = "clean"
)

func NewAIFlag(flag string) (AIFlag, bool) {
	f := AIFlag(strings.ToLower(strings.TrimSpace(flag)))
	if f == AIFlagSpam || f == AIFlagClean {
		return f, true
	}
	return "", false
}
