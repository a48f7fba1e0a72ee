// Пакет middleware - HTTP middleware clinic-ui.
// auth.go - проверка сессии, обновление токенов, сессия в контексте.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/goclinic/internal/patientapi"
	"github.com/bigkaa/goclinic/internal/ui/auth"
)

type contextKey string

// ContextKeyUISession - сессия пользователя в контексте запроса.
const ContextKeyUISession contextKey = "ui_session"

// LoginPath - страница входа clinic-ui.
const LoginPath = "/app/login"

// TokenRefresher обновляет токены по refresh token.
type TokenRefresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*auth.TokenResponse, error)
}

// UIAuth пропускает только запросы с действующей сессией.
type UIAuth struct {
	sessionManager *auth.SessionManager
	refresher      TokenRefresher
	logger         *slog.Logger
}

// NewUIAuth создаёт middleware проверки сессии.
func NewUIAuth(sessionManager *auth.SessionManager, refresher TokenRefresher, logger *slog.Logger) *UIAuth {
	return &UIAuth{
		sessionManager: sessionManager,
		refresher:      refresher,
		logger:         logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware возвращает middleware. Без сессии обычный запрос
// перенаправляется на вход, HTMX-запрос получает HX-Redirect.
func (ua *UIAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := ua.sessionManager.GetSessionFromRequest(r)
			if err != nil {
				ua.logger.Debug("Ошибка чтения UI-сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				ua.sessionManager.ClearSessionCookie(w)
				redirectToLogin(w, r)
				return
			}
			if session == nil {
				redirectToLogin(w, r)
				return
			}

			if session.IsExpired() {
				tr, err := ua.refresher.RefreshTokens(r.Context(), session.RefreshToken)
				if err != nil {
					ua.logger.Info("Не удалось обновить сессию, redirect на login",
						slog.String("username", session.Username),
						slog.String("error", err.Error()),
					)
					ua.sessionManager.ClearSessionCookie(w)
					redirectToLogin(w, r)
					return
				}
				session = session.Refreshed(tr)
				if err := ua.sessionManager.SetSessionCookie(w, session); err != nil {
					ua.logger.Error("Ошибка обновления session cookie", slog.String("error", err.Error()))
					ua.sessionManager.ClearSessionCookie(w)
					redirectToLogin(w, r)
					return
				}
				ua.logger.Debug("Сессия обновлена через refresh token", slog.String("username", session.Username))
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", LoginPath)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusFound)
}

// WithSession помещает сессию в контекст.
func WithSession(ctx context.Context, session *auth.SessionData) context.Context {
	return context.WithValue(ctx, ContextKeyUISession, session)
}

// SessionFromContext возвращает сессию из контекста или nil.
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, _ := ctx.Value(ContextKeyUISession).(*auth.SessionData)
	return session
}

// AccessToken - patientapi.TokenProvider поверх сессии в контексте.
func AccessToken(ctx context.Context) (string, error) {
	session := SessionFromContext(ctx)
	if session == nil || session.AccessToken == "" {
		return "", patientapi.ErrNoToken
	}
	return session.AccessToken, nil
}
