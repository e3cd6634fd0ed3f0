package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const winnersHistorySize = 7

// NewWinnersHandler returns a handler for the /winners command, listing the
// most recent daily winners.
func NewWinnersHandler(deps HandlerDeps) bot.HandlerFunc {
	return winnersHandler{deps}.Handle
}

type winnersHandler struct {
	deps HandlerDeps
}

func (h winnersHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "winners")

	if update.Message == nil {
		return
	}

	winners := h.deps.Archive.History(ctx, winnersHistorySize)
	if len(winners) == 0 {
		reply(ctx, b, log, update.Message.Chat.ID, "No daily winners recorded yet. The throne awaits.")
		return
	}

	var sb strings.Builder
	sb.WriteString("👑 Recent Daily Winners\n\n")
	for _, w := range winners {
		sb.WriteString(fmt.Sprintf("%s - %s with %d pushes\n", w.WinDate, w.DisplayName, w.PeriodPushes))
	}
	reply(ctx, b, log, update.Message.Chat.ID, sb.String())
}

// NewChampionsHandler returns a handler for the /champions command, showing
// who has collected the most daily wins.
func NewChampionsHandler(deps HandlerDeps) bot.HandlerFunc {
	return championsHandler{deps}.Handle
}

type championsHandler struct {
	deps HandlerDeps
}

func (h championsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "champions")

	if update.Message == nil {
		return
	}

	board := h.deps.Archive.WinsLeaderboard(ctx, leaderboardSize)
	if len(board) == 0 {
		reply(ctx, b, log, update.Message.Chat.ID, "No champions yet. Win a day and your name will live here.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏅 Hall of Champions\n\n")
	for i, e := range board {
		plural := "wins"
		if e.Wins == 1 {
			plural = "win"
		}
		sb.WriteString(fmt.Sprintf("%s %s - %d %s (last: %s)\n",
			rankMedal(i+1), e.DisplayName, e.Wins, plural, e.LastWinDate))
	}
	reply(ctx, b, log, update.Message.Chat.ID, sb.String())
}
