// Точка входа clinic-ui - веб-интерфейс клиники (HTMX + server-side HTML).
// Загружает конфигурацию и переводы, создаёт клиент clinic-api, кэш запросов
// (память или Redis), вход через Keycloak OIDC и запускает HTTP-сервер.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/bigkaa/goclinic/internal/api/handlers"
	"github.com/bigkaa/goclinic/internal/api/middleware"
	"github.com/bigkaa/goclinic/internal/config"
	"github.com/bigkaa/goclinic/internal/patientapi"
	"github.com/bigkaa/goclinic/internal/querycache"
	"github.com/bigkaa/goclinic/internal/server"
	"github.com/bigkaa/goclinic/internal/service"
	"github.com/bigkaa/goclinic/internal/ui/auth"
	uihandlers "github.com/bigkaa/goclinic/internal/ui/handlers"
	"github.com/bigkaa/goclinic/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/goclinic/internal/ui/middleware"
)

func main() {
	// 1. Локальный .env и конфигурация
	dotenvLoaded, err := config.LoadDotEnv(".env")
	if err != nil {
		slog.Error("Ошибка чтения .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg, err := config.LoadUI()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg.Logging)
	logger.Info("clinic-ui запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("api_url", cfg.APIURL),
		slog.Bool("dotenv", dotenvLoaded),
	)

	// 2. Переводы интерфейса
	bundle := i18n.Init(cfg.DefaultLang, logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. HTTP-клиент (clinic-api, Keycloak) с опциональным CA
	httpClient := &http.Client{Timeout: cfg.APITimeout}
	if cfg.CACertPath != "" {
		httpClient, err = middleware.HTTPClientWithCA(cfg.CACertPath, cfg.APITimeout)
		if err != nil {
			logger.Error("Ошибка загрузки CA-сертификата",
				slog.String("path", cfg.CACertPath),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		logger.Info("CA-сертификат загружен", slog.String("path", cfg.CACertPath))
	}

	// 4. Клиент clinic-api с токеном текущей сессии
	apiClient := patientapi.New(cfg.APIURL, httpClient, uimiddleware.AccessToken, logger)

	// 5. Кэш запросов
	checks := []handlers.NamedChecker{
		{Name: "clinic-api", Checker: patientapi.NewReadinessChecker(cfg.APIURL, httpClient)},
	}
	var (
		store querycache.Store
		rdb   *redis.Client
	)
	// exit закрывает клиент Redis: os.Exit не выполняет defer.
	exit := func(code int) {
		closeRedis(rdb, logger)
		os.Exit(code)
	}
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = querycache.NewRedisStore(rdb)
		checks = append(checks, handlers.NamedChecker{Name: "redis", Checker: querycache.NewRedisReadinessChecker(rdb)})
		logger.Info("Кэш запросов: Redis", slog.String("addr", cfg.RedisAddr))
	default:
		mem, err := querycache.NewMemoryStore(cfg.CacheSize)
		if err != nil {
			logger.Error("Ошибка создания кэша", slog.String("error", err.Error()))
			exit(1)
		}
		store = mem
		logger.Info("Кэш запросов: память", slog.Int("size", cfg.CacheSize))
	}
	cache := querycache.New(store, logger)

	// 6. Сессии и вход через Keycloak (PKCE)
	secureCookie := cfg.SecureCookie()
	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, secureCookie)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("CU_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}
	oidcClient := auth.NewOIDCClient(auth.OIDCConfig{
		KeycloakURL: cfg.Keycloak.URL,
		Realm:       cfg.Keycloak.Realm,
		ClientID:    cfg.OIDCClientID,
		HTTPClient:  httpClient,
	})
	authHandler := uihandlers.NewAuthHandler(oidcClient, sessionMgr, secureCookie, logger)
	uiAuth := uimiddleware.NewUIAuth(sessionMgr, oidcClient, logger)

	// 7. Страницы
	homeHandler := uihandlers.NewHomeHandler(apiClient, cache, logger)
	patientsHandler := uihandlers.NewPatientsHandler(apiClient, cache, cfg.CachePatientsTTL, logger)

	// 8. Readiness (clinic-api, Keycloak, Redis)
	kcChecker, err := middleware.NewKeycloakReadinessChecker(cfg.Keycloak.JWKSURL(), cfg.CACertPath)
	if err != nil {
		logger.Error("Ошибка создания Keycloak readiness checker", slog.String("error", err.Error()))
		exit(1)
	}
	checks = append(checks, handlers.NamedChecker{Name: "keycloak", Checker: kcChecker})
	healthHandler := handlers.NewHealthHandler("clinic-ui", checks...)

	// 9. topologymetrics (clinic-api + Keycloak)
	ctx := context.Background()
	dephealthSvc, err := service.NewDephealthService(service.DephealthOptions{
		ServiceID:     "clinic-ui",
		Group:         cfg.DephealthGroup,
		CheckInterval: cfg.DephealthCheckInterval,
		HTTP: []service.HTTPDependency{
			{Name: "clinic-api", URL: cfg.APIURL, HealthPath: "/health/live"},
			{Name: "keycloak", URL: cfg.Keycloak.JWKSURL()},
		},
	}, logger)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
	} else if err := dephealthSvc.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		dephealthSvc = nil
	}

	// 10. HTTP-сервер
	router := server.NewUIRouter(server.UIComponents{
		Auth:           authHandler,
		AuthMiddleware: uiAuth.Middleware(),
		Home:           homeHandler,
		Patients:       patientsHandler,
		Health:         healthHandler,
		DefaultLang:    cfg.DefaultLang,
	}, logger)
	logger.Info("clinic-ui инициализирован",
		slog.String("oidc_client_id", cfg.OIDCClientID),
		slog.Bool("secure_cookie", secureCookie),
	)
	runErr := server.New(cfg.Port, router, cfg.ShutdownTimeout, logger).Run()

	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	if runErr != nil {
		logger.Error("Ошибка сервера", slog.String("error", runErr.Error()))
		exit(1)
	}
	closeRedis(rdb, logger)
	logger.Info("clinic-ui остановлен")
}

func closeRedis(rdb *redis.Client, logger *slog.Logger) {
	if rdb == nil {
		return
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("Ошибка закрытия клиента Redis", slog.String("error", err.Error()))
	}
}
