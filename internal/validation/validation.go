// Пакет validation - общий экземпляр go-playground/validator
// с правилами для карточки пациента.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/bigkaa/goclinic/internal/domain/document"
)

// Теги пользовательских правил.
const (
	// TagDocument - CPF (11 цифр) или RG (9 цифр) после удаления нецифровых символов.
	TagDocument = "document"
	// TagPhone - телефон из 11 цифр (DDD + номер).
	TagPhone = "phone"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator возвращает общий экземпляр validator.Validate.
// Экземпляр кэширует метаданные структур и безопасен для конкурентного использования.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// В ошибках используем имя поля из тега form/json.
		v.RegisterTagNameFunc(fieldName)
		mustRegister(v, TagDocument, func(fl validator.FieldLevel) bool {
			return document.IsValid(fl.Field().String())
		})
		mustRegister(v, TagPhone, func(fl validator.FieldLevel) bool {
			return document.IsValidPhone(fl.Field().String())
		})
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("validation: регистрация правила " + tag + ": " + err.Error())
	}
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
