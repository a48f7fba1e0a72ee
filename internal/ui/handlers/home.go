package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/goclinic/internal/api/dto"
	"github.com/bigkaa/goclinic/internal/querycache"
	uimiddleware "github.com/bigkaa/goclinic/internal/ui/middleware"
	"github.com/bigkaa/goclinic/internal/ui/pages"
)

// Плитки главной страницы. Prescrições видна только пользователю с CRM.
var (
	homeTiles = []pages.Tile{
		{ID: "agenda", Href: "/app/agenda", TitleKey: "home.tile.agenda", DescKey: "home.tile.agenda.desc"},
		{ID: "finances", Href: "/app/finances", TitleKey: "home.tile.finances", DescKey: "home.tile.finances.desc"},
		{ID: "patients", Href: "/app/patients", TitleKey: "home.tile.patients", DescKey: "home.tile.patients.desc"},
		{ID: "anamnesis", Href: "/app/anamnesis", TitleKey: "home.tile.anamnesis", DescKey: "home.tile.anamnesis.desc"},
	}
	prescriptionsTile = pages.Tile{
		ID: "prescriptions", Href: "/app/prescriptions", TitleKey: "home.tile.prescriptions", DescKey: "home.tile.prescriptions.desc",
	}
)

// HomeHandler - главная страница с навигацией по разделам.
type HomeHandler struct {
	users  UserStore
	cache  *querycache.Cache
	logger *slog.Logger
}

// NewHomeHandler создаёт новый HomeHandler.
func NewHomeHandler(users UserStore, cache *querycache.Cache, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		users:  users,
		cache:  cache,
		logger: logger.With(slog.String("component", "ui.home")),
	}
}

// HandleHome обрабатывает GET /app/. Профиль пользователя кэшируется
// бессрочно; без профиля страница выводится без плитки Prescrições.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	session := uimiddleware.SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
		return
	}

	data := pages.HomeData{
		Layout: layoutFor(session, "home.title", pages.NavHome),
		Name:   session.DisplayName(),
		Tiles:  append([]pages.Tile(nil), homeTiles...),
	}

	user, err := querycache.Fetch(r.Context(), h.cache, querycache.ResourceUser, session.UserID, 0,
		func(ctx context.Context) (dto.User, error) {
			u, err := h.users.GetUser(ctx, session.UserID)
			if err != nil {
				return dto.User{}, err
			}
			return *u, nil
		})
	if err != nil {
		h.logger.Warn("Не удалось получить профиль пользователя",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
	} else {
		if user.Name != "" {
			data.Name = user.Name
		}
		if user.CRM != nil && *user.CRM != "" {
			data.Tiles = append(data.Tiles, prescriptionsTile)
		}
	}

	renderPage(w, r, h.logger, pages.Home(data))
}

// HandlePlaceholder - страница раздела вне текущего объёма (Agenda, Finanças...).
func HandlePlaceholder(titleKey string, logger *slog.Logger) http.HandlerFunc {
	logger = logger.With(slog.String("component", "ui.placeholder"))
	return func(w http.ResponseWriter, r *http.Request) {
		session := uimiddleware.SessionFromContext(r.Context())
		if session == nil {
			http.Redirect(w, r, uimiddleware.LoginPath, http.StatusFound)
			return
		}
		renderPage(w, r, logger, pages.Placeholder(layoutFor(session, titleKey, "")))
	}
}
