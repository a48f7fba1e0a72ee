// Пакет pages - компоненты страниц clinic-ui (a-h/templ).
// Компоненты собираются из templ.ComponentFunc; весь пользовательский
// текст экранируется templ.EscapeString.
package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// htmlWriter накапливает первую ошибку записи.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw пишет разметку как есть.
func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text пишет экранированный текст (допустим и в значениях атрибутов).
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr пишет ` name="value"` с экранированием.
func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="`)
	h.text(value)
	h.raw(`"`)
}

// flag пишет булев атрибут, если on.
func (h *htmlWriter) flag(name string, on bool) {
	if on {
		h.raw(" " + name)
	}
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
