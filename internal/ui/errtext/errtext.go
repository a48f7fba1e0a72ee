// Пакет errtext переводит ошибки удалённых вызовов в сообщения для
// пользователя на языке запроса.
package errtext

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	apierrors "github.com/bigkaa/goclinic/internal/api/errors"
	"github.com/bigkaa/goclinic/internal/patientapi"
	"github.com/bigkaa/goclinic/internal/ui/i18n"
)

// Ключи сообщений.
const (
	KeyValidation   = "errors.validation"
	KeyNotFound     = "errors.not_found"
	KeyUnauthorized = "errors.unauthorized"
	KeyForbidden    = "errors.forbidden"
	KeyConflict     = "errors.conflict"
	KeyInternal     = "errors.internal"
	KeyTimeout      = "errors.timeout"
	KeyNetwork      = "errors.network"
	KeyUnknown      = "errors.unknown"
)

// Key возвращает ключ сообщения для ошибки.
func Key(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, patientapi.ErrNoToken) {
		return KeyUnauthorized
	}

	var apiErr *patientapi.APIError
	if errors.As(err, &apiErr) {
		return keyForAPIError(apiErr)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KeyTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KeyTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || netErr != nil {
		return KeyNetwork
	}
	return KeyUnknown
}

// Message - переведённое сообщение для ошибки.
func Message(ctx context.Context, err error) string {
	return i18n.T(ctx, Key(err))
}

func keyForAPIError(e *patientapi.APIError) string {
	switch e.Code {
	case apierrors.CodeValidationError:
		return KeyValidation
	case apierrors.CodeNotFound:
		return KeyNotFound
	case apierrors.CodeUnauthorized:
		return KeyUnauthorized
	case apierrors.CodeForbidden:
		return KeyForbidden
	case apierrors.CodeConflict:
		return KeyConflict
	case apierrors.CodeInternalError:
		return KeyInternal
	}

	// Ответ не от clinic-api (прокси, балансировщик): решаем по статусу.
	switch {
	case e.Status == http.StatusBadRequest:
		return KeyValidation
	case e.Status == http.StatusUnauthorized:
		return KeyUnauthorized
	case e.Status == http.StatusForbidden:
		return KeyForbidden
	case e.Status == http.StatusNotFound:
		return KeyNotFound
	case e.Status == http.StatusConflict:
		return KeyConflict
	case e.Status == http.StatusGatewayTimeout:
		return KeyTimeout
	case e.Status >= http.StatusInternalServerError:
		return KeyInternal
	}
	return KeyUnknown
}
