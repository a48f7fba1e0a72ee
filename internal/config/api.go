package config

import (
	"fmt"
	"net/url"
	"time"
)

// APIConfig содержит параметры конфигурации clinic-api.
type APIConfig struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Параметры логирования
	Logging Logging

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Максимум соединений в пуле
	DBMaxConns int32
	// Таймаут первого подключения (ping при старте)
	DBConnectTimeout time.Duration

	// --- Keycloak / JWT ---

	Keycloak Keycloak
	// Issuer JWT (авто-вычисляется из Keycloak, если не задан)
	JWTIssuer string
	// URL JWKS endpoint (авто-вычисляется из Keycloak, если не задан)
	JWTJWKSURL string
	// Claim с номером CRM
	JWTCRMClaim string
	// Путь к CA-сертификату для TLS-соединений с Keycloak (опционально)
	CACertPath string

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// LoadAPI загружает конфигурацию clinic-api из переменных окружения CA_*.
func LoadAPI() (*APIConfig, error) {
	cfg := &APIConfig{}
	var err error

	// CA_PORT - порт HTTP-сервера (по умолчанию 8010)
	if cfg.Port, err = loadPort("CA_PORT", 8010); err != nil {
		return nil, err
	}
	if cfg.Logging, err = loadLogging("CA_"); err != nil {
		return nil, err
	}

	// --- PostgreSQL ---

	if cfg.DBHost, err = getEnvRequired("CA_DB_HOST"); err != nil {
		return nil, err
	}
	cfg.DBPort, err = getEnvInt("CA_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("CA_DB_PORT: %w", err)
	}
	if cfg.DBName, err = getEnvRequired("CA_DB_NAME"); err != nil {
		return nil, err
	}
	if cfg.DBUser, err = getEnvRequired("CA_DB_USER"); err != nil {
		return nil, err
	}
	if cfg.DBPassword, err = getEnvRequired("CA_DB_PASSWORD"); err != nil {
		return nil, err
	}
	cfg.DBSSLMode = getEnvDefault("CA_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("CA_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}
	maxConns, err := getEnvInt("CA_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("CA_DB_MAX_CONNS: %w", err)
	}
	if maxConns < 1 || maxConns > 1000 {
		return nil, fmt.Errorf("CA_DB_MAX_CONNS: значение %d вне диапазона 1-1000", maxConns)
	}
	cfg.DBMaxConns = int32(maxConns)
	cfg.DBConnectTimeout, err = getEnvDuration("CA_DB_CONNECT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CA_DB_CONNECT_TIMEOUT: %w", err)
	}

	// --- Keycloak / JWT ---

	if cfg.Keycloak, err = loadKeycloak("CA_"); err != nil {
		return nil, err
	}
	cfg.JWTIssuer = getEnvDefault("CA_JWT_ISSUER", cfg.Keycloak.Issuer())
	cfg.JWTJWKSURL = getEnvDefault("CA_JWT_JWKS_URL", cfg.Keycloak.JWKSURL())
	cfg.JWTCRMClaim = getEnvDefault("CA_JWT_CRM_CLAIM", "crm")
	cfg.CACertPath = getEnvDefault("CA_CA_CERT_PATH", "")

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("CA_DEPHEALTH_GROUP", "clinic")
	cfg.DephealthCheckInterval, err = getEnvDuration("CA_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CA_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	cfg.ShutdownTimeout, err = getEnvDuration("CA_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CA_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL для pgxpool.
func (c *APIConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL без пароля (для метрик topologymetrics).
func (c *APIConfig) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.User(c.DBUser),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	return u.String()
}

// MigrateURL возвращает URL для golang-migrate (драйвер pgx5).
func (c *APIConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}
