// Точка входа clinic-api - REST API пациентов и профилей пользователей.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// создаёт сервисный слой и handlers, запускает HTTP-сервер с JWT middleware,
// проверкой запросов по OpenAPI и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/goclinic/internal/api/handlers"
	"github.com/bigkaa/goclinic/internal/api/middleware"
	"github.com/bigkaa/goclinic/internal/api/openapi"
	"github.com/bigkaa/goclinic/internal/config"
	"github.com/bigkaa/goclinic/internal/database"
	"github.com/bigkaa/goclinic/internal/repository"
	"github.com/bigkaa/goclinic/internal/server"
	"github.com/bigkaa/goclinic/internal/service"
)

func main() {
	// 1. Локальный .env (только для разработки)
	dotenvLoaded, err := config.LoadDotEnv(".env")
	if err != nil {
		slog.Error("Ошибка чтения .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Конфигурация и логирование
	cfg, err := config.LoadAPI()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg.Logging)
	logger.Info("clinic-api запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.Bool("dotenv", dotenvLoaded),
	)

	// 3. Миграции БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics.
	// Проверка PostgreSQL идёт через тот же пул соединений.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories и services
	patientsSvc := service.NewPatientService(repository.NewPatientRepository(pool), logger)
	usersSvc := service.NewUserService(repository.NewUserRepository(pool), logger)

	// 6. Readiness checkers (PostgreSQL + Keycloak)
	kcChecker, err := middleware.NewKeycloakReadinessChecker(cfg.JWTJWKSURL, cfg.CACertPath)
	if err != nil {
		logger.Error("Ошибка создания Keycloak readiness checker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Handlers
	healthHandler := handlers.NewHealthHandler("clinic-api",
		handlers.NamedChecker{Name: "postgresql", Checker: database.NewReadinessChecker(pool)},
		handlers.NamedChecker{Name: "keycloak", Checker: kcChecker},
	)
	apiHandler := handlers.NewAPIHandler(patientsSvc, usersSvc, logger)

	// 8. JWT middleware и проверка запросов по OpenAPI
	jwtAuth, err := middleware.NewJWTAuth(cfg.JWTJWKSURL, cfg.CACertPath, cfg.JWTIssuer, cfg.JWTCRMClaim, logger)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	validator, err := middleware.NewRequestValidator(openapi.Spec, logger)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 9. topologymetrics - мониторинг зависимостей (PostgreSQL + Keycloak)
	dephealthSvc, err := service.NewDephealthService(service.DephealthOptions{
		ServiceID:     "clinic-api",
		Group:         cfg.DephealthGroup,
		CheckInterval: cfg.DephealthCheckInterval,
		PostgresDB:    pgDB,
		PostgresURL:   cfg.DatabaseURL(),
		HTTP:          []service.HTTPDependency{{Name: "keycloak", URL: cfg.JWTJWKSURL}},
	}, logger)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
	} else if err := dephealthSvc.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		dephealthSvc = nil
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 10. HTTP-сервер
	router := server.NewAPIRouter(server.APIComponents{
		Handler:   apiHandler,
		Health:    healthHandler,
		JWTAuth:   jwtAuth,
		Validator: validator,
	}, logger)
	if err := server.New(cfg.Port, router, cfg.ShutdownTimeout, logger).Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	logger.Info("clinic-api остановлен")
}
