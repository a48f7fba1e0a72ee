package model

import "time"

// User - пользователь системы (врач или сотрудник клиники).
// ID совпадает с subject токена Keycloak.
type User struct {
	ID    string
	Name  string
	Email string
	// CRM - номер регистрации в медицинском совете; nil для сотрудников без CRM
	CRM       *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCRM - true, если у пользователя заполнен CRM.
func (u *User) HasCRM() bool {
	return u != nil && u.CRM != nil && *u.CRM != ""
}
