package model

import "time"

// Patient - карточка пациента.
// Хранится в таблице patients; документ и телефон - только цифры.
type Patient struct {
	// ID - UUID, назначается хранилищем при регистрации
	ID string
	// OwnerID - subject врача, зарегистрировавшего пациента
	OwnerID string
	// Name - полное имя
	Name string
	// Age - возраст в годах, 0-120
	Age int
	// Document - CPF (11 цифр) или RG (9 цифр)
	Document string
	// Phone - телефон, 11 цифр (опционально)
	Phone *string
	// CreatedAt - время регистрации
	CreatedAt time.Time
}

// PatientInput - данные для регистрации пациента.
type PatientInput struct {
	Name     string
	Age      int
	Document string
	Phone    *string
}
