package entity

import "github.com/ignatzorin/appeals-backend/internal/domain/valueobject"

// Identity описывает, кто выполняет действие. Приходит из сессионного токена.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	AuthType    valueobject.AuthType
}

func (i Identity) IsGuest() bool {
	return i.AuthType == valueobject.AuthTypeGuest
}

func (i Identity) IsAnonymous() bool {
	return i.UID == ""
}
