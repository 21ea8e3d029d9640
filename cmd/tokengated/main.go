package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/tokengate/go-auth"
	"github.com/tokengate/go-auth/activitymap"
	"github.com/tokengate/go-auth/adapters/redistokens"
	"github.com/tokengate/go-auth/mailer"
	"github.com/tokengate/go-auth/middleware/authware"
)

func main() {
	logger := newLogger()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("configuration error: %s", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fatal: %s", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, logger auth.Logger) error {
	keys, err := loadKeys(cfg)
	if err != nil {
		return fmt.Errorf("rsa keys: %w", err)
	}

	bundb, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer bundb.Close()

	repos := auth.NewRepositoryManager(bundb)
	users := repos.Users()
	grants := repos.Grants()

	tokens := tokenStore(cfg, repos)

	sender, err := mailer.New(mailer.Config{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromName:    cfg.SMTP.FromName,
		FromAddress: cfg.SMTP.FromAddress,
		AppDomain:   cfg.AppDomain,
		AppPath:     cfg.GetAppPath(),
		CookieName:  cfg.CookieName,
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	tokenService := auth.NewTokenService(keys, logger)

	auther := auth.NewAuther(users, tokens, tokenService, sender, cfg).
		WithLogger(logger).
		WithActivitySink(activityLog(logger))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "tokengated",
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	authenticated := authware.Authenticate(authware.Config{
		Verifier: tokenService,
		Store:    tokens,
		Oracle:   grants,
		AuthCfg:  cfg,
	})

	ctrl := auth.NewHTTPController(auther, users, grants, keys, cfg)
	ctrl.Logger = logger
	ctrl.RegisterRoutes(srv.Router(), authenticated)

	logger.Info("listening on %s", cfg.HTTPAddr)

	// Serve in a goroutine so a listen failure surfaces instead of being
	// swallowed while we wait for an exit signal.
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(cfg.HTTPAddr)
	}()

	return awaitShutdown(serveErr, exitSignals(), logger)
}

func loadKeys(cfg *Config) (*auth.KeyPair, error) {
	if cfg.PrivateKeyPath != "" && cfg.PublicKeyPath != "" {
		return auth.LoadKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	}
	// Ephemeral keys are only acceptable in development: every restart
	// invalidates all outstanding tokens.
	if !cfg.IsDev {
		return nil, fmt.Errorf("RSA_PRIVATE_KEY_PATH and RSA_PUBLIC_KEY_PATH are required outside dev mode")
	}
	return auth.GenerateKeyPair(2048)
}

func openDatabase(ctx context.Context, cfg *Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	bundb := bun.NewDB(sqldb, sqlitedialect.New())

	if err := createSchema(ctx, bundb); err != nil {
		bundb.Close()
		return nil, err
	}

	return bundb, nil
}

func createSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*auth.User)(nil),
		(*auth.SessionToken)(nil),
		(*auth.MethodGrant)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}

func tokenStore(cfg *Config, repos auth.RepositoryManager) auth.TokenStore {
	if cfg.RedisAddr == "" {
		return repos.Tokens()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return redistokens.New(client)
}

func activityLog(logger auth.Logger) auth.ActivitySink {
	return auth.ActivitySinkFunc(func(ctx context.Context, evt auth.ActivityEvent) error {
		record := activitymap.Normalize(evt)
		logger.Info("activity %s actor=%s object=%s channel=%s", record.Verb, record.ActorID, record.ObjectID, record.Channel)
		return nil
	})
}

func newLogger() auth.Logger {
	return slogLogger{base: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))}
}

type slogLogger struct {
	base *slog.Logger
}

func (l slogLogger) Debug(format string, args ...any) { l.base.Debug(fmt.Sprintf(format, args...)) }
func (l slogLogger) Info(format string, args ...any)  { l.base.Info(fmt.Sprintf(format, args...)) }
func (l slogLogger) Warn(format string, args ...any)  { l.base.Warn(fmt.Sprintf(format, args...)) }
func (l slogLogger) Error(format string, args ...any) { l.base.Error(fmt.Sprintf(format, args...)) }

func exitSignals() <-chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}

func awaitShutdown(serveErr <-chan error, signals <-chan os.Signal, logger auth.Logger) error {
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case sig := <-signals:
		logger.Info("received %s, shutting down", sig)
		return nil
	}
}
