// Package main contains the entrypoint for the MycoBot Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/kingmyco/mycobot/internal/api"
	"github.com/kingmyco/mycobot/internal/bot"
	"github.com/kingmyco/mycobot/internal/bot/handlers"
	"github.com/kingmyco/mycobot/internal/bot/tasks"
	"github.com/kingmyco/mycobot/internal/config"
	"github.com/kingmyco/mycobot/internal/contest"
	"github.com/kingmyco/mycobot/internal/database"
	"github.com/kingmyco/mycobot/internal/dexscreener"
	"github.com/kingmyco/mycobot/internal/gemini"
	"github.com/kingmyco/mycobot/internal/logger"
	"github.com/kingmyco/mycobot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components, starts the bot, and returns an
// exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	// Local development convenience; a missing .env file is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	ledger := contest.NewLedger(cfg.Contest.CooldownWindow, cfg.Contest.PointsPerPush, store, log)
	archive := contest.NewArchive(store, cfg.Contest.HydrateLimit, log)

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	dexClient := dexscreener.NewClient(cfg.Dex, log)

	hDeps := handlers.HandlerDeps{
		Logger:       log,
		Config:       cfg,
		Store:        store,
		Ledger:       ledger,
		Archive:      archive,
		GeminiClient: gemClient,
		DexClient:    dexClient,
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log,
		tgbot.WithMiddlewares(logger.Middleware(log)))
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	cfg.Telegram.BotUsername = me.Username
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetBotCommands(ctx, tg); err != nil {
		log.Warn("Failed to publish bot command list", "error", err)
	}

	tDeps := tasks.TaskDeps{
		Logger:  log,
		Config:  cfg,
		Store:   store,
		Ledger:  ledger,
		Archive: archive,
		TgBot:   tg,
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API, store, ledger, archive, log)
	}

	app := bot.NewBot(log, cfg, ledger, tg, sched, apiServer)

	log.Info("Starting bot")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully")
	time.Sleep(time.Second)
	return 0
}
