package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/gemrelay/gemrelay/internal/channel/telegram"
	"github.com/gemrelay/gemrelay/internal/config"
	"github.com/gemrelay/gemrelay/internal/flow"
	"github.com/gemrelay/gemrelay/internal/gemini"
	"github.com/gemrelay/gemrelay/internal/handlers"
	"github.com/gemrelay/gemrelay/internal/logger"
	"github.com/gemrelay/gemrelay/internal/models"
	"github.com/gemrelay/gemrelay/internal/server"
	"github.com/gemrelay/gemrelay/internal/session"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideCatalog,
			provideStore,
			provideGeminiClient,
			provideTelegramClient,
			provideStager,
			provideBuilder,
			provideResolver,
			provideCommands,
			provideListener,
			handlers.NewPingHandler,
			provideStatusHandler,
			provideServer,
		),
		fx.Invoke(
			startServer,
			startListener,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
	).Run()
}

func provideConfig() (config.Config, error) {
	return config.Load(configPath)
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideCatalog(cfg config.Config) *models.Catalog {
	return models.NewCatalog(cfg.Chat.DefaultModel)
}

func provideStore(cfg config.Config, catalog *models.Catalog) *session.MemoryStore {
	return session.NewMemoryStore(session.Defaults{
		ModelID:      catalog.Default(),
		HistoryLimit: cfg.Chat.HistoryLimit,
	})
}

func provideGeminiClient(log *slog.Logger, cfg config.Config) (*gemini.Client, error) {
	return gemini.NewClient(context.Background(), log, cfg.Gemini)
}

func provideTelegramClient(log *slog.Logger, cfg config.Config) (*telegram.Client, error) {
	return telegram.NewClient(log, cfg.Telegram.BotToken, cfg.Chat.MaxAssetBytes)
}

func provideStager(log *slog.Logger, client *gemini.Client, catalog *models.Catalog) *flow.Stager {
	return flow.NewStager(log, client, catalog)
}

func provideBuilder(log *slog.Logger, tg *telegram.Client, stager *flow.Stager) *flow.Builder {
	return flow.NewBuilder(log, tg, stager)
}

func provideResolver(log *slog.Logger, store *session.MemoryStore, builder *flow.Builder, client *gemini.Client, tg *telegram.Client) *flow.Resolver {
	return flow.NewResolver(log, store, store, builder, client, tg)
}

func provideCommands(log *slog.Logger, store *session.MemoryStore, catalog *models.Catalog) *telegram.Commands {
	return telegram.NewCommands(log, store, store, catalog)
}

func provideListener(log *slog.Logger, tg *telegram.Client, resolver *flow.Resolver, commands *telegram.Commands, cfg config.Config) *telegram.Listener {
	return telegram.NewListener(log, tg, resolver, commands, cfg.Telegram.PollTimeout)
}

func provideStatusHandler(store *session.MemoryStore, catalog *models.Catalog) *handlers.StatusHandler {
	return handlers.NewStatusHandler(store, catalog)
}

func provideServer(cfg config.Config, pingHandler *handlers.PingHandler, statusHandler *handlers.StatusHandler) *server.Server {
	return server.NewServer(cfg.Server.Addr, pingHandler, statusHandler)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", slog.Any("error", err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func startListener(lc fx.Lifecycle, log *slog.Logger, listener *telegram.Listener) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				if err := listener.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("listener stopped", slog.Any("error", err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
