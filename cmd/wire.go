package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"solvectl/internal/adapters/api"
	sessionfile "solvectl/internal/adapters/session/file"
	"solvectl/internal/application"
	"solvectl/internal/domain"
	"solvectl/internal/ports"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".solvectl"
)

type app struct {
	gateway  ports.Gateway
	session  *application.Session
	notifier *application.Notifier
	clock    ports.Clock
	logger   *slog.Logger
	cfg      appConfig
}

type appConfig struct {
	BaseURL         string
	RequestTimeout  time.Duration
	SessionPath     string
	TaskInterval    time.Duration
	AdminInterval   time.Duration
	SummaryInterval time.Duration
	LogLevel        string
}

func wireApp() (*app, error) {
	cfg, err := loadConfig(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	store, err := sessionfile.NewStore(cfg.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	gateway := api.NewClient(cfg.BaseURL, http.DefaultClient, cfg.RequestTimeout)
	clock := ports.SystemClock{}
	notifier := application.NewNotifier(clock)
	session := application.NewSession(gateway, store, clock)

	return &app{
		gateway:  gateway,
		session:  session,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
	}, nil
}

func loadConfig(cfg *viper.Viper) (appConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return appConfig{}, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))

	cfg.SetEnvPrefix("SOLVECTL")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault("api.base_url", "http://127.0.0.1:8000")
	cfg.SetDefault("api.timeout", "15s")
	cfg.SetDefault("session.path", filepath.Join(homeDir, configDir, "session.toml"))
	cfg.SetDefault("poll.tasks", "10s")
	cfg.SetDefault("poll.admin", "15s")
	cfg.SetDefault("poll.summary", "30s")
	cfg.SetDefault("log.level", "info")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return appConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return appConfig{
		BaseURL:         cfg.GetString("api.base_url"),
		RequestTimeout:  cfg.GetDuration("api.timeout"),
		SessionPath:     cfg.GetString("session.path"),
		TaskInterval:    cfg.GetDuration("poll.tasks"),
		AdminInterval:   cfg.GetDuration("poll.admin"),
		SummaryInterval: cfg.GetDuration("poll.summary"),
		LogLevel:        cfg.GetString("log.level"),
	}, nil
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

var errNotLoggedIn = errors.New(`not logged in: run "solvectl login" first`)

// ensureSession rehydrates the persisted session once and gates the command
// on the access decision. A stale token collapses during rehydration and
// falls through to the entry redirect.
func ensureSession(ctx context.Context, app *app, required domain.Role) (application.SessionSnapshot, error) {
	if err := app.session.Initialize(ctx); err != nil {
		app.notifier.Enqueue("session rehydration failed", domain.SeverityError)
		app.logger.Warn("session rehydration failed", "error", err)
	}

	snap := app.session.Snapshot()
	switch application.Decide(snap, required) {
	case application.DecisionAllow:
		return snap, nil
	case application.DecisionRedirectHome:
		return snap, domain.ErrForbidden
	default:
		return snap, errNotLoggedIn
	}
}
