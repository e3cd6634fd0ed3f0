package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const helpText = `The grove answers to these commands:

Contest
/buttonpush - push the sacred button (cooldown applies)
/leaderboard - top pushers of all time
/myrank - your place in the standings
/winners - recent daily winners
/champions - most daily wins

Economy
/spores - your spore balance and rank

Market
/price - current token price
/ca - the token contract address
/trending - trending Solana pairs

Counsel
/askkingmyco <question> - ask the king anything`

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil {
		return
	}

	reply(ctx, b, log, update.Message.Chat.ID, helpText)
}
