// Package tasks implements the bot's scheduled jobs: the nightly winner
// rollover and database maintenance.
package tasks

import (
	"log/slog"

	tgbot "github.com/go-telegram/bot"

	"github.com/kingmyco/mycobot/internal/config"
	"github.com/kingmyco/mycobot/internal/contest"
	"github.com/kingmyco/mycobot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks. TgBot may
// be nil in tests; tasks treat announcements as best effort.
type TaskDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	Ledger  *contest.Ledger
	Archive *contest.Archive
	TgBot   *tgbot.Bot
}
