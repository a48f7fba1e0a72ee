package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Document string  `json:"document" validate:"document"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
}

func TestValidator_CustomTags(t *testing.T) {
	phone := "(11) 98765-4321"
	badPhone := "98765-4321"

	tests := []struct {
		name    string
		in      sample
		wantErr []string
	}{
		{"CPF без телефона", sample{Document: "123.456.789-01"}, nil},
		{"RG с телефоном", sample{Document: "12.345.678-9", Phone: &phone}, nil},
		{"10 цифр", sample{Document: "1234567890"}, []string{"document"}},
		{"пустой документ и плохой телефон", sample{Document: "", Phone: &badPhone}, []string{"document", "phone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validator().Struct(tt.in)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Struct() вернул ошибку: %v", err)
				}
				return
			}
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Struct() = %v, ожидаются ValidationErrors", err)
			}
			if len(verrs) != len(tt.wantErr) {
				t.Fatalf("получено %d ошибок, ожидается %d", len(verrs), len(tt.wantErr))
			}
			for i, fe := range verrs {
				if fe.Field() != tt.wantErr[i] {
					t.Errorf("ошибка %d: поле %q, ожидается %q", i, fe.Field(), tt.wantErr[i])
				}
			}
		})
	}
}

func TestValidator_Singleton(t *testing.T) {
	if Validator() != Validator() {
		t.Error("Validator() должен возвращать один и тот же экземпляр")
	}
}
