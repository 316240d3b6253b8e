package policy

import (
	"strings"

	"github.com/ignatzorin/appeals-backend/internal/domain/entity"
)

// AdminPolicy решает, может ли identity выносить решения и видеть все апелляции.
type AdminPolicy interface {
	IsAdmin(identity entity.Identity) bool
}

// AdminPolicyFunc позволяет передать обычную функцию как AdminPolicy.
type AdminPolicyFunc func(identity entity.Identity) bool

func (f AdminPolicyFunc) IsAdmin(identity entity.Identity) bool {
	return f(identity)
}

// SingleAdmin признаёт администратором один email.
type SingleAdmin struct {
	email string
}

func NewSingleAdmin(email string) *SingleAdmin {
	return &SingleAdmin{email: strings.ToLower(strings.TrimSpace(email))}
}

func (p *SingleAdmin) IsAdmin(identity entity.Identity) bool {
	// Гостевой email никем не подтверждён.
	if p.email == "" || identity.IsGuest() || identity.IsAnonymous() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(identity.Email), p.email)
}

func (p *SingleAdmin) Email() string {
	return p.email
}
