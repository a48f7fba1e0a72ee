// Пакет errors - тело ошибки clinic-api {"error": {"code", "message"}}:
// запись в handlers и разбор на стороне клиента clinic-ui.
package errors

import (
	"encoding/json"
	"io"
	"net/http"
)

// Коды ошибок из openapi.yaml (схема Error).
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeInternalError   = "INTERNAL_ERROR"
)

// HTTP-статус для каждого кода.
var statusByCode = map[string]int{
	CodeValidationError: http.StatusBadRequest,
	CodeNotFound:        http.StatusNotFound,
	CodeUnauthorized:    http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeConflict:        http.StatusConflict,
	CodeInternalError:   http.StatusInternalServerError,
}

// Body - тело ответа с ошибкой.
type Body struct {
	Error Detail `json:"error"`
}

// Detail - код и описание ошибки.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write пишет ошибку с кодом code. Статус берётся из кода,
// неизвестный код отдаётся как 500.
func Write(w http.ResponseWriter, code, message string) {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{Error: Detail{Code: code, Message: message}})
}

// Decode читает тело ошибки. ok=false, если тело не в формате clinic-api
// (например, ответ прокси).
func Decode(r io.Reader) (d Detail, ok bool) {
	var body Body
	if err := json.NewDecoder(r).Decode(&body); err != nil || body.Error.Code == "" {
		return Detail{}, false
	}
	return body.Error, true
}

func ValidationError(w http.ResponseWriter, message string) { Write(w, CodeValidationError, message) }
func NotFound(w http.ResponseWriter, message string)        { Write(w, CodeNotFound, message) }
func Unauthorized(w http.ResponseWriter, message string)    { Write(w, CodeUnauthorized, message) }
func Forbidden(w http.ResponseWriter, message string)       { Write(w, CodeForbidden, message) }
func Conflict(w http.ResponseWriter, message string)        { Write(w, CodeConflict, message) }
func InternalError(w http.ResponseWriter, message string)   { Write(w, CodeInternalError, message) }
