// Пакет config - загрузка и валидация конфигурации clinic-api и clinic-ui
// из переменных окружения (префиксы CA_ и CU_ соответственно).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Logging - параметры логирования, общие для обоих сервисов.
type Logging struct {
	// Уровень логирования (debug, info, warn, error)
	Level slog.Level
	// Формат логов (json, text)
	Format string
}

// Keycloak - параметры подключения к Keycloak.
type Keycloak struct {
	// URL Keycloak без завершающего slash
	URL string
	// Имя realm
	Realm string
}

// Issuer возвращает issuer токенов realm.
func (k Keycloak) Issuer() string {
	return fmt.Sprintf("%s/realms/%s", k.URL, k.Realm)
}

// JWKSURL возвращает URL JWKS endpoint realm.
func (k Keycloak) JWKSURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", k.URL, k.Realm)
}

// LoadDotEnv загружает переменные из .env файла, если он существует.
// Уже заданные переменные окружения не перезаписываются.
// Возвращает true, если файл был прочитан.
func LoadDotEnv(path string) (bool, error) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return true, nil
}

// SetupLogger настраивает глобальный slog-логгер.
func SetupLogger(l Logging) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: l.Level,
	}

	var handler slog.Handler
	if l.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// loadLogging читает <prefix>LOG_LEVEL и <prefix>LOG_FORMAT.
func loadLogging(prefix string) (Logging, error) {
	var l Logging
	var err error

	l.Level, err = parseLogLevel(getEnvDefault(prefix+"LOG_LEVEL", "info"))
	if err != nil {
		return l, fmt.Errorf("%sLOG_LEVEL: %w", prefix, err)
	}

	l.Format = getEnvDefault(prefix+"LOG_FORMAT", "json")
	if l.Format != "json" && l.Format != "text" {
		return l, fmt.Errorf("%sLOG_FORMAT: недопустимое значение %q, допустимые: json, text", prefix, l.Format)
	}
	return l, nil
}

// loadKeycloak читает <prefix>KEYCLOAK_URL (обязательный) и <prefix>KEYCLOAK_REALM.
func loadKeycloak(prefix string) (Keycloak, error) {
	var k Keycloak
	u, err := getEnvRequired(prefix + "KEYCLOAK_URL")
	if err != nil {
		return k, err
	}
	k.URL = strings.TrimRight(u, "/")
	k.Realm = getEnvDefault(prefix+"KEYCLOAK_REALM", "clinic")
	return k, nil
}

// loadPort читает порт и проверяет диапазон.
func loadPort(key string, defaultVal int) (int, error) {
	port, err := getEnvInt(key, defaultVal)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%s: значение %d вне допустимого диапазона 1-65535", key, port)
	}
	return port, nil
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
