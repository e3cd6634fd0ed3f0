// Package bot implements the core bot functionality, lifecycle management,
// and component orchestration for the MycoBot Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/kingmyco/mycobot/internal/api"
	"github.com/kingmyco/mycobot/internal/config"
	"github.com/kingmyco/mycobot/internal/contest"
)

// Bot represents the main bot application and manages its components'
// lifecycle: the Telegram listener, the scheduler, the contest mirror
// worker, and the optional HTTP API.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	ledger    *contest.Ledger
	tgBot     *tgbot.Bot
	scheduler *Scheduler
	apiServer *api.Server
}

// NewBot creates a new instance of the bot with all required dependencies.
// apiServer may be nil when the HTTP API is disabled.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	ledger *contest.Ledger,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
	apiServer *api.Server,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		ledger:    ledger,
		tgBot:     tgBot,
		scheduler: scheduler,
		apiServer: apiServer,
	}
}

// Run starts all components and blocks until the context is canceled or a
// component fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener")
		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		return b.ledger.RunMirrorWorker(gCtx)
	})

	if b.apiServer != nil {
		g.Go(func() error {
			return b.apiServer.Run(gCtx)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
