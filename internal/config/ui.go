package config

import (
	"fmt"
	"strings"
	"time"
)

// Допустимые бэкенды кэша запросов.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// UIConfig содержит параметры конфигурации clinic-ui.
type UIConfig struct {
	// Порт HTTP-сервера
	Port int
	// Параметры логирования
	Logging Logging

	// --- clinic-api ---

	// Базовый URL clinic-api (например, http://clinic-api:8010)
	APIURL string
	// Таймаут запросов к clinic-api
	APITimeout time.Duration

	// --- OIDC ---

	Keycloak Keycloak
	// Client ID публичного OIDC-клиента (PKCE)
	OIDCClientID string
	// Секрет шифрования сессий (32 байта hex или произвольная строка)
	SessionSecret string
	// Путь к CA-сертификату для TLS-соединений (опционально)
	CACertPath string

	// --- Кэш запросов ---

	// Бэкенд: memory или redis
	CacheBackend string
	// Максимальное число записей (memory)
	CacheSize int
	// Время жизни списка пациентов
	CachePatientsTTL time.Duration
	// Адрес Redis (host:port), обязателен для CacheBackend=redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Язык интерфейса по умолчанию
	DefaultLang string

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// LoadUI загружает конфигурацию clinic-ui из переменных окружения CU_*.
func LoadUI() (*UIConfig, error) {
	cfg := &UIConfig{}
	var err error

	// CU_PORT - порт HTTP-сервера (по умолчанию 8020)
	if cfg.Port, err = loadPort("CU_PORT", 8020); err != nil {
		return nil, err
	}
	if cfg.Logging, err = loadLogging("CU_"); err != nil {
		return nil, err
	}

	// --- clinic-api ---

	apiURL, err := getEnvRequired("CU_API_URL")
	if err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(apiURL, "/")
	cfg.APITimeout, err = getEnvDuration("CU_API_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CU_API_TIMEOUT: %w", err)
	}

	// --- OIDC ---

	if cfg.Keycloak, err = loadKeycloak("CU_"); err != nil {
		return nil, err
	}
	cfg.OIDCClientID = getEnvDefault("CU_OIDC_CLIENT_ID", "clinic-ui")
	cfg.SessionSecret = getEnvDefault("CU_SESSION_SECRET", "")
	cfg.CACertPath = getEnvDefault("CU_CA_CERT_PATH", "")

	// --- Кэш запросов ---

	cfg.CacheBackend = getEnvDefault("CU_CACHE_BACKEND", CacheBackendMemory)
	if cfg.CacheBackend != CacheBackendMemory && cfg.CacheBackend != CacheBackendRedis {
		return nil, fmt.Errorf("CU_CACHE_BACKEND: недопустимое значение %q, допустимые: memory, redis", cfg.CacheBackend)
	}
	cfg.CacheSize, err = getEnvInt("CU_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("CU_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize < 1 {
		return nil, fmt.Errorf("CU_CACHE_SIZE: значение %d должно быть положительным", cfg.CacheSize)
	}
	cfg.CachePatientsTTL, err = getEnvDuration("CU_CACHE_PATIENTS_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("CU_CACHE_PATIENTS_TTL: %w", err)
	}
	cfg.RedisAddr = getEnvDefault("CU_REDIS_ADDR", "")
	if cfg.CacheBackend == CacheBackendRedis && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("CU_REDIS_ADDR: обязателен при CU_CACHE_BACKEND=redis")
	}
	cfg.RedisPassword = getEnvDefault("CU_REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvInt("CU_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("CU_REDIS_DB: %w", err)
	}

	cfg.DefaultLang = getEnvDefault("CU_DEFAULT_LANG", "pt")
	if cfg.DefaultLang != "pt" && cfg.DefaultLang != "en" {
		return nil, fmt.Errorf("CU_DEFAULT_LANG: недопустимое значение %q, допустимые: pt, en", cfg.DefaultLang)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("CU_DEPHEALTH_GROUP", "clinic")
	cfg.DephealthCheckInterval, err = getEnvDuration("CU_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CU_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	cfg.ShutdownTimeout, err = getEnvDuration("CU_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CU_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SecureCookie - true, если Keycloak доступен по https.
func (c *UIConfig) SecureCookie() bool {
	return strings.HasPrefix(c.Keycloak.URL, "https")
}
