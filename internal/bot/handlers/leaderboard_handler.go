package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const leaderboardSize = 10

// NewLeaderboardHandler returns a handler for the /leaderboard command.
func NewLeaderboardHandler(deps HandlerDeps) bot.HandlerFunc {
	return leaderboardHandler{deps}.Handle
}

type leaderboardHandler struct {
	deps HandlerDeps
}

func (h leaderboardHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "leaderboard")

	if update.Message == nil {
		return
	}

	board := h.deps.Ledger.Leaderboard(leaderboardSize)
	if len(board) == 0 {
		reply(ctx, b, log, update.Message.Chat.ID, "No one has pushed the sacred button yet. Be the first.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Button Push Leaderboard\n\n")
	for i, p := range board {
		sb.WriteString(fmt.Sprintf("%s %s - %d pushes (%d spores)\n",
			rankMedal(i+1), p.DisplayName, p.TotalPushes, p.PointsEarned))
	}
	reply(ctx, b, log, update.Message.Chat.ID, sb.String())
}

// NewMyRankHandler returns a handler for the /myrank command.
func NewMyRankHandler(deps HandlerDeps) bot.HandlerFunc {
	return myRankHandler{deps}.Handle
}

type myRankHandler struct {
	deps HandlerDeps
}

func (h myRankHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "myrank")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	info, ok := h.deps.Ledger.UserRank(update.Message.From.ID)
	if !ok {
		reply(ctx, b, log, update.Message.Chat.ID,
			"You have not yet pushed the sacred button. Start with /buttonpush.")
		return
	}

	reply(ctx, b, log, update.Message.Chat.ID,
		fmt.Sprintf("You hold rank #%d with %d total pushes.", info.Rank, info.TotalPushes))
}

func rankMedal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}
