package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string
	JWTSecret    string

	RequestTimeout time.Duration

	NotificationWorkers       int
	NotificationBuffer        int
	NotificationRetentionDays int
}

// New sets up all config related services
func New() *Config {
	env := os.Getenv("ENV")

	//setup zap logger and replace default logger
	logger, err := setLogger(env)
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                       os.Getenv("DB_URI"),
		DatabaseName:              getEnv("DB_NAME", "lost-found"),
		BaseURL:                   os.Getenv("BASE_URL"),
		Port:                      getEnv("PORT", "8080"),
		Env:                       env,
		JWTSecret:                 os.Getenv("JWT_SECRET"),
		RequestTimeout:            getDuration("REQUEST_TIMEOUT", 30*time.Second),
		NotificationWorkers:       getInt("NOTIFICATION_WORKERS", 2),
		NotificationBuffer:        getInt("NOTIFICATION_BUFFER", 256),
		NotificationRetentionDays: getInt("NOTIFICATION_RETENTION_DAYS", 30),
	}
}

// Validate reports settings the api cannot run without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	return nil
}

// RetentionWindow is how long read notifications are kept
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.NotificationRetentionDays) * 24 * time.Hour
}

// InMemory reports whether the api should run without a mongo connection
func (c *Config) InMemory() bool {
	return c.URL == ""
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	zap.S().Errorw(message, "status", httpStatusCode, "error", errMsg)
	b, _ := json.Marshal(models.ErrorMessageResponse{
		Response: models.MessageError{Message: message, Error: errMsg},
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	w.Write(b)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		zap.S().Warnw("invalid integer config value, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		zap.S().Warnw("invalid duration config value, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
