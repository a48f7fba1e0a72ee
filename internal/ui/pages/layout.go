package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/goclinic/internal/ui/i18n"
)

// htmxSrc - HTMX подключается с CDN.
const htmxSrc = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// Разделы навигации.
const (
	NavHome     = "home"
	NavPatients = "patients"
)

// LayoutData - общие данные страницы.
type LayoutData struct {
	// TitleKey - ключ i18n заголовка страницы.
	TitleKey string
	// Username - отображаемое имя пользователя.
	Username string
	// Active - активный раздел навигации.
	Active string
}

// Layout - каркас страницы: шапка, навигация, контейнеры уведомлений и диалогов.
func Layout(d LayoutData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		lang := i18n.LangFromContext(ctx)
		htmlLang := "pt-BR"
		if lang == i18n.LangEN {
			htmlLang = "en"
		}

		h.raw(`<!DOCTYPE html><html`)
		h.attr("lang", htmlLang)
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(i18n.T(ctx, d.TitleKey) + " | " + i18n.T(ctx, "app.title"))
		h.raw(`</title><link rel="stylesheet" href="/static/css/app.css"><script`)
		h.attr("src", htmxSrc)
		h.raw(`></script><script src="/static/js/app.js" defer></script></head><body>`)

		h.raw(`<header class="topbar"><a href="/app/"><strong>`)
		h.text(i18n.T(ctx, "app.title"))
		h.raw(`</strong></a><nav>`)
		navLink(h, "/app/", i18n.T(ctx, "nav.home"), d.Active == NavHome)
		navLink(h, "/app/patients", i18n.T(ctx, "nav.patients"), d.Active == NavPatients)

		h.raw(`<form method="post" action="/app/set-language"><select name="lang" onchange="this.form.submit()"`)
		h.attr("aria-label", i18n.T(ctx, "nav.language"))
		h.raw(`>`)
		for _, l := range i18n.Languages {
			h.raw(`<option`)
			h.attr("value", l)
			h.flag("selected", l == lang)
			h.raw(`>`)
			h.text(i18n.T(ctx, "lang."+l))
			h.raw(`</option>`)
		}
		h.raw(`</select></form>`)

		if d.Username != "" {
			h.raw(`<span>`)
			h.text(d.Username)
			h.raw(`</span><form method="post" action="/app/logout"><button type="submit" class="btn-link">`)
			h.text(i18n.T(ctx, "nav.logout"))
			h.raw(`</button></form>`)
		}
		h.raw(`</nav></header><main>`)
		h.component(body)
		h.raw(`</main><div id="dialog-slot"></div><div id="toasts" aria-live="polite"></div></body></html>`)
		return h.err
	})
}

func navLink(h *htmlWriter, href, label string, active bool) {
	h.raw(`<a`)
	h.attr("href", href)
	if active {
		h.raw(` aria-current="page"`)
	}
	h.raw(`>`)
	h.text(label)
	h.raw(`</a>`)
}
