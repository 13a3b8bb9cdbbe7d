// Package main is the entrypoint for the task tracker API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/nexarq/taskmanager/internal/ai"
	"github.com/nexarq/taskmanager/internal/auth"
	"github.com/nexarq/taskmanager/internal/config"
	"github.com/nexarq/taskmanager/internal/handler"
	"github.com/nexarq/taskmanager/internal/kv"
	"github.com/nexarq/taskmanager/internal/metrics"
	"github.com/nexarq/taskmanager/internal/repository"
	"github.com/nexarq/taskmanager/internal/server"
	"github.com/nexarq/taskmanager/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.MigrateOnStart {
		if err := repository.Migrate(ctx, cfg.DatabaseURL, repository.MigrateUp); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	poolCfg := repository.DefaultPoolConfig()
	poolCfg.MaxConns = cfg.DatabaseMaxConns
	repo, err := repository.Open(ctx, cfg.DatabaseURL, poolCfg)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	prefStore, err := kv.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	scheme, err := auth.SchemeFor(cfg.CredentialScheme)
	if err != nil {
		logger.Error("invalid credential scheme", "error", err)
		os.Exit(1)
	}
	verifier := auth.NewVerifier(repo, scheme)
	authorizer, err := auth.NewAuthorizer(cfg.AuthMode, cfg.AuthSharedSecret, verifier)
	if err != nil {
		logger.Error("invalid auth mode", "error", err)
		os.Exit(1)
	}

	// Shared-secret callers name their user explicitly; header callers are
	// already resolved by the authorizer.
	var actors *handler.ActorResolver
	if cfg.AuthMode == config.AuthModeSharedSecret {
		actors = handler.NewActorResolver(verifier)
	} else {
		actors = handler.NewActorResolver(nil)
	}

	var recorder metrics.Recorder = metrics.NewNoop()
	var snapshotter metrics.Snapshotter
	if cfg.MetricsEnabled {
		mem := metrics.NewInMemory()
		recorder = mem
		snapshotter = mem
	}

	generator := newGenerator(cfg, logger)

	accountService := service.NewAccountService(repo, verifier, service.NewPreferences(prefStore), logger, recorder)
	taskService := service.NewTaskService(repo, ai.NewTagger(generator, logger, recorder), cfg.TaskOwnershipEnforced, logger, recorder)
	chatService := service.NewChatService(repo, ai.NewChat(generator, logger, recorder))

	r := handler.NewRouter(handler.RouterConfig{
		Logger:             logger,
		Health:             handler.NewHealthHandler(repo, prefStore, logger),
		Metrics:            handler.NewMetricsHandler(snapshotter),
		Accounts:           handler.NewAccountHandler(accountService, actors, logger),
		Tasks:              handler.NewTaskHandler(taskService, actors, logger),
		Chat:               handler.NewChatHandler(chatService, actors, logger),
		Authorizer:         authorizer,
		MinAuthDuration:    cfg.AuthMinDuration,
		OwnershipEnforced:  cfg.TaskOwnershipEnforced,
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(r, server.Config{
		Port:              cfg.AppPort,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ShutdownTimeout:   cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before Postgres.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return prefStore.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"auth_mode", cfg.AuthMode,
		"credential_scheme", cfg.CredentialScheme,
		"ai_provider", cfg.AIProvider,
		"ownership_enforced", cfg.TaskOwnershipEnforced,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newGenerator selects the text generation backend.
func newGenerator(cfg *config.Config, logger *slog.Logger) ai.Generator {
	if cfg.AIProvider != config.AIProviderWorkersAI {
		logger.Warn("AI provider disabled; tags and chat will use fallbacks")
		return ai.Disabled{}
	}
	return ai.NewWorkersAI(ai.WorkersAIConfig{
		BaseURL:   cfg.AIBaseURL,
		AccountID: cfg.AIAccountID,
		APIToken:  cfg.AIAPIToken,
		Model:     cfg.AIModel,
		Logger:    logger,
	})
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL drops the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError strips connection secrets from an error message before it is logged.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
