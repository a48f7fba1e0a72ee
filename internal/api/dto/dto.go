// Пакет dto - типы запросов и ответов clinic-api (JSON), общие для
// handlers и HTTP-клиента clinic-ui. Соответствуют схемам openapi.yaml.
package dto

import "time"

// PatientInput - тело POST /api/v1/patients.
type PatientInput struct {
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	Document string  `json:"document"`
	Phone    *string `json:"phone,omitempty"`
}

// Patient - карточка пациента.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Document  string    `json:"document"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PatientList - ответ GET /api/v1/patients.
type PatientList struct {
	Items  []Patient `json:"items"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// User - профиль пользователя.
type User struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	CRM   *string `json:"crm,omitempty"`
}
