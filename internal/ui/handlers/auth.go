// auth.go - вход через Keycloak OIDC (Authorization Code + PKCE) и выход.
package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bigkaa/goclinic/internal/ui/auth"
)

// Имя cookie для хранения PKCE state (code_verifier + state).
const stateCookieName = "clinic_auth_state"

// stateCookieMaxAge - 5 минут на прохождение входа в Keycloak.
const stateCookieMaxAge = 5 * 60

// OIDCProvider - операции OIDC-клиента, нужные обработчикам входа.
type OIDCProvider interface {
	AuthorizeURL(redirectURI, state, codeChallenge string) string
	LogoutURL(idTokenHint, postLogoutRedirectURI string) string
	ExchangeCode(ctx context.Context, code, redirectURI, codeVerifier string) (*auth.TokenResponse, error)
}

// AuthHandler - обработчики аутентификации clinic-ui.
type AuthHandler struct {
	oidc           OIDCProvider
	sessionManager *auth.SessionManager
	secureCookie   bool
	logger         *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(oidc OIDCProvider, sessionManager *auth.SessionManager, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		oidc:           oidc,
		sessionManager: sessionManager,
		secureCookie:   secureCookie,
		logger:         logger.With(slog.String("component", "ui_auth")),
	}
}

// stateData - данные state cookie на время входа.
type stateData struct {
	State        string `json:"state"`
	CodeVerifier string `json:"code_verifier"`
}

// HandleLogin - GET /app/login. Сохраняет PKCE и state в короткоживущем
// cookie и перенаправляет на страницу входа Keycloak.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	pkce, err := auth.GeneratePKCE()
	if err != nil {
		h.logger.Error("Ошибка генерации PKCE", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}
	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("Ошибка генерации state", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	sdJSON, _ := json.Marshal(stateData{State: state, CodeVerifier: pkce.CodeVerifier})
	h.setStateCookie(w, base64.URLEncoding.EncodeToString(sdJSON), stateCookieMaxAge)

	authorizeURL := h.oidc.AuthorizeURL(h.buildBaseURL(r)+"/app/callback", state, pkce.CodeChallenge)
	h.logger.Debug("Redirect на Keycloak login", slog.String("authorize_url", authorizeURL))
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// HandleCallback - GET /app/callback. Обменивает code на токены,
// создаёт сессию и перенаправляет на главную.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// 1. Ошибка от Keycloak
	if errCode := q.Get("error"); errCode != "" {
		h.logger.Warn("Keycloak вернул ошибку авторизации",
			slog.String("error", errCode),
			slog.String("description", q.Get("error_description")),
		)
		http.Error(w, "Ошибка авторизации: "+errCode, http.StatusBadRequest)
		return
	}

	// 2. code и state
	code, state := q.Get("code"), q.Get("state")
	if code == "" || state == "" {
		http.Error(w, "Отсутствует code или state", http.StatusBadRequest)
		return
	}

	// 3. state cookie
	sd, err := h.readStateCookie(r)
	if err != nil {
		h.logger.Warn("Некорректный state cookie", slog.String("error", err.Error()))
		http.Error(w, "Сессия авторизации истекла, попробуйте ещё раз", http.StatusBadRequest)
		return
	}
	if sd.State != state {
		h.logger.Warn("State mismatch (возможная CSRF атака)")
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}
	h.setStateCookie(w, "", -1)

	// 4. Обмен code на токены
	tr, err := h.oidc.ExchangeCode(r.Context(), code, h.buildBaseURL(r)+"/app/callback", sd.CodeVerifier)
	if err != nil {
		h.logger.Error("Ошибка обмена code на tokens", slog.String("error", err.Error()))
		http.Error(w, "Ошибка аутентификации", http.StatusBadGateway)
		return
	}

	// 5. Сессия
	session, err := auth.NewSessionData(tr)
	if err != nil {
		h.logger.Error("Ошибка извлечения данных из токена", slog.String("error", err.Error()))
		http.Error(w, "Ошибка обработки токена", http.StatusInternalServerError)
		return
	}
	if err := h.sessionManager.SetSessionCookie(w, session); err != nil {
		h.logger.Error("Ошибка установки session cookie", slog.String("error", err.Error()))
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь аутентифицирован",
		slog.String("user_id", session.UserID),
		slog.String("username", session.Username),
	)
	http.Redirect(w, r, "/app/", http.StatusFound)
}

// HandleLogout - POST /app/logout. Очищает сессию и перенаправляет
// на выход Keycloak.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	idToken := ""
	if session, err := h.sessionManager.GetSessionFromRequest(r); err == nil && session != nil {
		idToken = session.IDToken
	}
	h.sessionManager.ClearSessionCookie(w)

	logoutURL := h.oidc.LogoutURL(idToken, h.buildBaseURL(r)+"/app/login")
	h.logger.Info("Пользователь выполняет logout")
	http.Redirect(w, r, logoutURL, http.StatusFound)
}

func (h *AuthHandler) setStateCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     auth.CookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) readStateCookie(r *http.Request) (*stateData, error) {
	c, err := r.Cookie(stateCookieName)
	if err != nil {
		return nil, err
	}
	raw, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil, err
	}
	var sd stateData
	if err := json.Unmarshal(raw, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

// buildBaseURL - scheme + host с учётом X-Forwarded-* от reverse proxy.
func (h *AuthHandler) buildBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := r.Host
	if fwdHost := r.Header.Get("X-Forwarded-Host"); fwdHost != "" {
		host = fwdHost
	}
	return scheme + "://" + host
}
