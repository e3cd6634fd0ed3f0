// Package handlers contains Telegram bot command and callback handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly creates a middleware that restricts a handler to the configured
// admin user. Unauthorized attempts get a short refusal in persona voice.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, b, update)
				return
			}

			userID := update.Message.From.ID
			if userID != deps.Config.Telegram.AdminUserID {
				log := deps.Logger.With("middleware", "AdminOnly")
				log.WarnContext(ctx, "Unauthorized admin command attempt",
					"user_id", userID, "chat_id", update.Message.Chat.ID)

				_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   "Only the keeper of the grove may use that command.",
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err)
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
