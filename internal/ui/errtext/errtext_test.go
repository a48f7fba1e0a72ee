package errtext

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"

	apierrors "github.com/bigkaa/goclinic/internal/api/errors"
	"github.com/bigkaa/goclinic/internal/patientapi"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"нет токена", fmt.Errorf("list: %w", patientapi.ErrNoToken), KeyUnauthorized},
		{"конфликт", fmt.Errorf("регистрация: %w", &patientapi.APIError{Status: 409, Code: apierrors.CodeConflict}), KeyConflict},
		{"валидация", &patientapi.APIError{Status: 400, Code: apierrors.CodeValidationError}, KeyValidation},
		{"не найден", &patientapi.APIError{Status: 404, Code: apierrors.CodeNotFound}, KeyNotFound},
		{"запрещено", &patientapi.APIError{Status: 403, Code: apierrors.CodeForbidden}, KeyForbidden},
		{"внутренняя", &patientapi.APIError{Status: 500, Code: apierrors.CodeInternalError}, KeyInternal},
		{"502 от прокси", &patientapi.APIError{Status: http.StatusBadGateway, Message: "<html>"}, KeyInternal},
		{"504 от прокси", &patientapi.APIError{Status: http.StatusGatewayTimeout}, KeyTimeout},
		{"418", &patientapi.APIError{Status: http.StatusTeapot}, KeyUnknown},
		{"deadline", fmt.Errorf("x: %w", context.DeadlineExceeded), KeyTimeout},
		{"таймаут клиента", &url.Error{Op: "Get", URL: "http://api", Err: timeoutErr{}}, KeyTimeout},
		{"соединение", &url.Error{Op: "Get", URL: "http://api", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}, KeyNetwork},
		{"прочее", errors.New("boom"), KeyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.err); got != tt.want {
				t.Errorf("Key() = %q, ожидается %q", got, tt.want)
			}
		})
	}
}

// Без загруженных каталогов Message возвращает ключ.
func TestMessage_WithoutCatalog(t *testing.T) {
	if got := Message(context.Background(), errors.New("boom")); got != KeyUnknown {
		t.Errorf("Message() = %q", got)
	}
}
