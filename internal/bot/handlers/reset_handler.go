package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewResetDailyHandler returns the admin handler for /reset_daily. It
// archives the current period leader before zeroing the period counts, the
// same sequence the scheduled rollover uses.
func NewResetDailyHandler(deps HandlerDeps) bot.HandlerFunc {
	return resetDailyHandler{deps}.Handle
}

type resetDailyHandler struct {
	deps HandlerDeps
}

func (h resetDailyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reset_daily")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	leader, ok := h.deps.Ledger.CurrentPeriodLeader()
	if ok {
		if err := h.deps.Archive.ArchiveCurrentWinner(ctx, &leader); err != nil {
			log.ErrorContext(ctx, "Failed to archive winner during manual reset", "error", err)
			reply(ctx, b, log, chatID, "Could not archive the current winner; reset aborted.")
			return
		}
	}

	h.deps.Ledger.ResetPeriod()
	log.InfoContext(ctx, "Daily stats reset manually", "winner_archived", ok)

	if ok {
		reply(ctx, b, log, chatID, fmt.Sprintf(
			"The day is sealed. %s takes the crown with %d pushes. Counts reset.",
			leader.DisplayName, leader.PeriodPushes))
		return
	}
	reply(ctx, b, log, chatID, "No pushes this period. Counts reset.")
}
