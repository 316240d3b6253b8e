package valueobject

import "github.com/ignatzorin/appeals-backend/internal/pkg/apperror"

// ListScope определяет, какие апелляции видит вызывающий: свои или все.
type ListScope string

const (
	ScopeMine ListScope = "mine"
	ScopeAll  ListScope = "all"
)

func NewListScope(scope string) (ListScope, error) {
	switch ListScope(scope) {
	case "", ScopeMine:
		return ScopeMine, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "scope должен быть mine или all")
}
