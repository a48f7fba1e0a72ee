// Пакет forms - модель формы нового пациента.
// Значения хранятся как введены; Validate проверяет все поля сразу и
// возвращает ключи сообщений i18n для каждого ошибочного поля.
package forms

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bigkaa/goclinic/internal/api/dto"
	"github.com/bigkaa/goclinic/internal/domain/document"
	"github.com/bigkaa/goclinic/internal/validation"
)

// Имена полей формы.
const (
	FieldName     = "name"
	FieldAge      = "age"
	FieldDocument = "document"
	FieldPhone    = "phone"
)

// Ограничения длины ввода (maxlength полей).
const (
	NameMaxLen     = 50
	DocumentMaxLen = 11
	PhoneMaxLen    = 11
)

// Ключи сообщений об ошибках.
const (
	MsgNameInvalid     = "form.name.invalid"
	MsgAgeInvalid      = "form.age.invalid"
	MsgAgeTooHigh      = "form.age.too_high"
	MsgDocumentInvalid = "form.document.invalid"
	MsgPhoneInvalid    = "form.phone.invalid"
)

// Fields - порядок полей в форме.
var Fields = []string{FieldName, FieldAge, FieldDocument, FieldPhone}

// PatientForm - значения формы в том виде, в каком их ввёл пользователь.
type PatientForm struct {
	Name     string
	Age      string
	Document string
	Phone    string
}

// FieldErrors - поле → ключ сообщения.
type FieldErrors map[string]string

// ErrUnknownField - поле не входит в форму.
var ErrUnknownField = errors.New("forms: неизвестное поле")

// ParsePatientForm читает форму из значений запроса.
func ParsePatientForm(values url.Values) PatientForm {
	return PatientForm{
		Name:     values.Get(FieldName),
		Age:      values.Get(FieldAge),
		Document: values.Get(FieldDocument),
		Phone:    values.Get(FieldPhone),
	}
}

// Value возвращает значение поля.
func (f PatientForm) Value(field string) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldAge:
		return f.Age
	case FieldDocument:
		return f.Document
	case FieldPhone:
		return f.Phone
	}
	return ""
}

// Set устанавливает значение поля.
func (f *PatientForm) Set(field, value string) error {
	switch field {
	case FieldName:
		f.Name = value
	case FieldAge:
		f.Age = value
	case FieldDocument:
		f.Document = value
	case FieldPhone:
		f.Phone = value
	default:
		return ErrUnknownField
	}
	return nil
}

// patientFields - нормализованные значения с правилами проверки.
type patientFields struct {
	Name     string `form:"name" validate:"min=3,max=50"`
	Age      int    `form:"age" validate:"min=0,max=120"`
	Document string `form:"document" validate:"document"`
	Phone    string `form:"phone" validate:"omitempty,phone"`
}

// Validate проверяет все поля. При отсутствии ошибок возвращает
// тело запроса регистрации: документ и телефон только цифрами,
// пустой телефон - nil.
func (f PatientForm) Validate() (dto.PatientInput, FieldErrors) {
	errs := FieldErrors{}

	fields := patientFields{
		Name:     strings.TrimSpace(f.Name),
		Document: f.Document,
		Phone:    strings.TrimSpace(f.Phone),
	}

	age, err := strconv.Atoi(strings.TrimSpace(f.Age))
	if err != nil {
		errs[FieldAge] = MsgAgeInvalid
	} else {
		fields.Age = age
	}

	if err := validation.Validator().Struct(fields); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if _, seen := errs[fe.Field()]; !seen {
					errs[fe.Field()] = messageFor(fe)
				}
			}
		}
	}

	if len(errs) > 0 {
		return dto.PatientInput{}, errs
	}

	in := dto.PatientInput{
		Name:     fields.Name,
		Age:      fields.Age,
		Document: document.Digits(fields.Document),
	}
	if fields.Phone != "" {
		phone := document.Digits(fields.Phone)
		in.Phone = &phone
	}
	return in, nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case FieldName:
		return MsgNameInvalid
	case FieldAge:
		if fe.Tag() == "max" {
			return MsgAgeTooHigh
		}
		return MsgAgeInvalid
	case FieldDocument:
		return MsgDocumentInvalid
	case FieldPhone:
		return MsgPhoneInvalid
	}
	return fe.Tag()
}
