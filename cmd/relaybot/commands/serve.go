package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/edgard/relaybot/internal/bot"
	"github.com/edgard/relaybot/internal/bot/handlers"
	"github.com/edgard/relaybot/internal/bot/tasks"
	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/gemini"
	"github.com/edgard/relaybot/internal/logger"
	"github.com/edgard/relaybot/internal/search"
	"github.com/edgard/relaybot/internal/telegram"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the bot and the task scheduler",
		Long: `Start long polling Telegram and run scheduled tasks until SIGINT
or SIGTERM is received.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := configPath(cmd)
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		_ = store.Close(context.Background())
		return fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	var searcher search.Searcher
	if cfg.Search.APIKey != "" {
		searcher = search.NewClient(cfg.Search, nil, log)
	} else {
		log.Warn("Search API key not configured, /websearch is disabled")
	}

	hDeps := handlers.HandlerDeps{
		Logger:       log,
		Config:       cfg,
		Store:        store,
		GeminiClient: gemClient,
		Searcher:     searcher,
		Fetcher:      handlers.NewHTTPFetcher(&http.Client{Timeout: cfg.Telegram.DownloadTimeout}, cfg.Telegram.MaxDownloadBytes),
	}
	router := handlers.NewRouter(hDeps)

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(router.Handler()),
	)
	if err != nil {
		_ = store.Close(context.Background())
		return err
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		_ = store.Close(context.Background())
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(router)); err != nil {
		_ = store.Close(context.Background())
		return fmt.Errorf("failed to register Telegram handlers: %w", err)
	}

	tDeps := tasks.TaskDeps{Logger: log, Store: store, Config: cfg}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		_ = store.Close(context.Background())
		return err
	}

	log.Info("Starting bot...")
	if err := bot.NewBot(log, store, tg, sched).Run(ctx); err != nil {
		return err
	}
	log.Info("Bot stopped gracefully.")
	return nil
}

// openStore connects the persistence backend selected by database.driver.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (database.Store, error) { //nolint:ireturn // backend chosen at runtime
	switch cfg.Database.Driver {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout)
		defer cancel()
		store, err := database.NewMongoStore(connectCtx, cfg.Database.MongoURI, cfg.Database.MongoDatabase, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		return store, nil
	default:
		db, err := database.NewDB(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
		}
		return database.NewStore(db, log), nil
	}
}
