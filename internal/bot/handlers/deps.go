package handlers

import (
	"log/slog"

	"github.com/kingmyco/mycobot/internal/config"
	"github.com/kingmyco/mycobot/internal/contest"
	"github.com/kingmyco/mycobot/internal/database"
	"github.com/kingmyco/mycobot/internal/dexscreener"
	"github.com/kingmyco/mycobot/internal/gemini"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Store        database.Store
	Ledger       *contest.Ledger
	Archive      *contest.Archive
	GeminiClient gemini.Client
	DexClient    *dexscreener.Client
}
