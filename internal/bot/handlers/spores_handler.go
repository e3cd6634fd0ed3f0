package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/kingmyco/mycobot/internal/database"
)

// NewSporesHandler returns a handler for the /spores command, reporting the
// caller's spore balance and rank from the durable store.
func NewSporesHandler(deps HandlerDeps) bot.HandlerFunc {
	return sporesHandler{deps}.Handle
}

type sporesHandler struct {
	deps HandlerDeps
}

func (h sporesHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "spores")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	rank, spores, err := h.deps.Store.UserSporeRank(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			reply(ctx, b, log, chatID, "You hold no spores yet. Push the sacred button to begin.")
			return
		}
		log.ErrorContext(ctx, "Failed to load spore balance", "user_id", userID, "error", err)
		reply(ctx, b, log, chatID, "The mycelium is silent right now. Try again shortly.")
		return
	}

	reply(ctx, b, log, chatID,
		fmt.Sprintf("You hold %d spores, rank #%d in the grove.", spores, rank))
}
