// Package telegram handles the setup and registration of Telegram bot
// handlers.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/kingmyco/mycobot/internal/bot/handlers"
)

// NewTelegramBot creates a new Telegram bot instance.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created")
	return b, nil
}

// applyMiddleware wraps a handler function with a slice of middleware.
// Middleware are applied in reverse order so the first one in the slice is
// the outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers command and callback handlers with the Telegram
// bot instance, applying each handler's middleware.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration")
		return nil
	}

	for name, regHandler := range registeredHandlers {
		if regHandler.Handler == nil {
			log.Warn("Skipping registration for nil handler", "name", name)
			continue
		}

		finalHandler := applyMiddleware(regHandler.Handler, regHandler.Middleware)
		b.RegisterHandler(regHandler.HandlerType, regHandler.Pattern, regHandler.MatchType, finalHandler)
		log.Debug("Registered handler", "name", name, "pattern", regHandler.Pattern)
	}

	log.Info("Registered Telegram handlers", "count", len(registeredHandlers))
	return nil
}

// SetBotCommands publishes the user-facing command list so Telegram clients
// can offer completion.
func SetBotCommands(ctx context.Context, b *bot.Bot) error {
	_, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "buttonpush", Description: "Push the sacred button"},
			{Command: "leaderboard", Description: "Top button pushers"},
			{Command: "myrank", Description: "Your contest rank"},
			{Command: "winners", Description: "Recent daily winners"},
			{Command: "champions", Description: "Most daily wins"},
			{Command: "spores", Description: "Your spore balance"},
			{Command: "price", Description: "Token price"},
			{Command: "ca", Description: "Token contract address"},
			{Command: "trending", Description: "Trending Solana pairs"},
			{Command: "askkingmyco", Description: "Ask King Myco anything"},
			{Command: "help", Description: "Show all commands"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}
