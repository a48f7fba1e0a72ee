package handlers

import (
	"net/http"
	"net/url"

	"github.com/bigkaa/goclinic/internal/ui/i18n"
)

// HandleSetLanguage обрабатывает POST /app/set-language.
// Сохраняет язык в cookie "lang" на год и возвращает на предыдущую страницу.
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if !i18n.IsSupported(lang) {
		lang = i18n.LangPT
	}

	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, backTarget(r), http.StatusSeeOther)
}

// backTarget - путь из Referer того же хоста, иначе /app/.
func backTarget(r *http.Request) string {
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/app/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
