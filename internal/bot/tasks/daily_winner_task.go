package tasks

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
)

// newDailyWinnerTask creates the midnight rollover task: archive the current
// period leader, zero the period counts, and announce the winner. Archiving
// happens before the reset so a failure between the two steps loses the
// reset, never the winner.
func newDailyWinnerTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "daily_winner")

	return func(ctx context.Context) error {
		leader, ok := deps.Ledger.CurrentPeriodLeader()
		if !ok {
			log.InfoContext(ctx, "No pushes this period, resetting counts without a winner")
			deps.Ledger.ResetPeriod()
			return nil
		}

		if err := deps.Archive.ArchiveCurrentWinner(ctx, &leader); err != nil {
			return fmt.Errorf("failed to archive daily winner: %w", err)
		}

		deps.Ledger.ResetPeriod()
		log.InfoContext(ctx, "Daily winner archived and period reset",
			"user_id", leader.UserID, "period_pushes", leader.PeriodPushes)

		announceWinner(ctx, deps, leader.DisplayName, leader.PeriodPushes)
		return nil
	}
}

func announceWinner(ctx context.Context, deps TaskDeps, name string, pushes int64) {
	log := deps.Logger.With("task", "daily_winner")

	chatID := deps.Config.Telegram.AnnounceChatID
	if deps.TgBot == nil || chatID == 0 {
		return
	}

	_, err := deps.TgBot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("👑 The day belongs to %s with %d pushes of the sacred button! "+
			"A new day begins. The button is reborn.", name, pushes),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to announce daily winner", "error", err, "chat_id", chatID)
	}
}
