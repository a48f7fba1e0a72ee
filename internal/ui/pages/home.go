package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/goclinic/internal/ui/i18n"
)

// Tile - плитка раздела на главной странице.
type Tile struct {
	ID   string
	Href string
	// TitleKey и DescKey - ключи i18n.
	TitleKey string
	DescKey  string
}

// HomeData - данные главной страницы.
type HomeData struct {
	Layout LayoutData
	// Name - имя для приветствия.
	Name  string
	Tiles []Tile
}

// Home - главная страница с плитками разделов.
func Home(d HomeData) templ.Component {
	return Layout(d.Layout, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<h1>`)
		h.text(i18n.Tf(ctx, "home.greeting", d.Name))
		h.raw(`</h1><p>`)
		h.text(i18n.T(ctx, "home.subtitle"))
		h.raw(`</p><div class="tiles">`)
		for _, t := range d.Tiles {
			h.raw(`<a class="tile"`)
			h.attr("href", t.Href)
			h.attr("data-tile", t.ID)
			h.raw(`><h2>`)
			h.text(i18n.T(ctx, t.TitleKey))
			h.raw(`</h2><p>`)
			h.text(i18n.T(ctx, t.DescKey))
			h.raw(`</p></a>`)
		}
		h.raw(`</div>`)
		return h.err
	}))
}

// Placeholder - страница раздела, который ещё не реализован.
func Placeholder(layout LayoutData) templ.Component {
	return Layout(layout, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<h1>`)
		h.text(i18n.T(ctx, layout.TitleKey))
		h.raw(`</h1><p>`)
		h.text(i18n.T(ctx, "placeholder.text"))
		h.raw(`</p><a class="btn" href="/app/">`)
		h.text(i18n.T(ctx, "placeholder.back"))
		h.raw(`</a>`)
		return h.err
	}))
}

// ErrorPage - страница с сообщением об ошибке.
func ErrorPage(layout LayoutData, message string) templ.Component {
	return Layout(layout, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<div class="alert" role="alert">`)
		h.text(message)
		h.raw(`</div>`)
		return h.err
	}))
}
