// Пакет i18n - переводы интерфейса clinic-ui.
// T(ctx, key) и Tf(ctx, key, args...) берут язык из контекста запроса.
// Языки: português (pt, по умолчанию) и English (en).
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
)

// Коды поддерживаемых языков.
const (
	LangPT = "pt"
	LangEN = "en"
)

// Languages - поддерживаемые коды в порядке отображения.
var Languages = []string{LangPT, LangEN}

var (
	// supportedTags - теги для сопоставления Accept-Language, индексы совпадают с Languages.
	supportedTags = []language.Tag{language.BrazilianPortuguese, language.English}
	matcher       = language.NewMatcher(supportedTags)
)

type contextKey string

const contextKeyLang contextKey = "i18n_lang"

// Bundle - каталоги переводов всех языков.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string // lang → key → перевод
	fallback string
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle с языком подстановки fallback.
func NewBundle(fallback string, logger *slog.Logger) *Bundle {
	return &Bundle{
		catalogs: make(map[string]map[string]string),
		fallback: fallback,
		logger:   logger,
	}
}

// LoadMessages загружает плоский JSON-каталог {"key": "перевод"}.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	b.catalogs[lang] = messages
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Debug("i18n каталог загружен",
			slog.String("lang", lang),
			slog.Int("keys", len(messages)),
		)
	}
	return nil
}

// Translate возвращает перевод ключа. Нет в языке - ищем в fallback,
// нет и там - возвращаем сам ключ.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.catalogs[lang][key]; ok {
		return msg
	}
	if msg, ok := b.catalogs[b.fallback][key]; ok {
		return msg
	}
	return key
}

// Translatef - Translate с подстановкой аргументов.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	tmpl := b.Translate(lang, key)
	if len(args) == 0 {
		return tmpl
	}
	return formatFunc(tmpl, args...)
}

// Keys возвращает ключи каталога языка.
func (b *Bundle) Keys(lang string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.catalogs[lang]))
	for k := range b.catalogs[lang] {
		keys = append(keys, k)
	}
	return keys
}

// --- Глобальный Bundle ---

var (
	globalBundle *Bundle
	globalOnce   sync.Once
)

// Init создаёт глобальный Bundle. Повторные вызовы возвращают тот же экземпляр.
func Init(fallback string, logger *slog.Logger) *Bundle {
	globalOnce.Do(func() {
		globalBundle = NewBundle(fallback, logger)
	})
	return globalBundle
}

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// LangFromContext возвращает язык из контекста, по умолчанию pt.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return LangPT
}

// T переводит ключ на язык запроса.
func T(ctx context.Context, key string) string {
	if globalBundle == nil {
		return key
	}
	return globalBundle.Translate(LangFromContext(ctx), key)
}

// Tf переводит ключ с подстановкой аргументов.
func Tf(ctx context.Context, key string, args ...any) string {
	if globalBundle == nil {
		if len(args) == 0 {
			return key
		}
		return formatFunc(key, args...)
	}
	return globalBundle.Translatef(LangFromContext(ctx), key, args...)
}

// formatFunc - fmt.Sprintf через переменную: формат-строки приходят из
// каталогов во время выполнения, статическая printf-проверка к ним неприменима.
var formatFunc = fmt.Sprintf

// IsSupported - true для pt и en.
func IsSupported(lang string) bool {
	return lang == LangPT || lang == LangEN
}

// MatchLanguage выбирает язык по заголовку Accept-Language.
// Пустой или нераспознанный заголовок - fallback.
func MatchLanguage(acceptLanguage, fallback string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return Languages[idx]
}
