package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// PushCallbackData is the callback payload carried by the inline push button.
const PushCallbackData = "contest:push"

// RegisteredHandler represents a command handler with its match rules and
// middleware, everything needed to register it against the Telegram client.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot
// commands plus the push button callback.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(pattern string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
		return RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     h,
			Middleware:  mw,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	handlers["/start"] = command("start", NewStartHandler(deps))
	handlers["/help"] = command("help", NewHelpHandler(deps))

	handlers["/buttonpush"] = command("buttonpush", NewPushHandler(deps))
	handlers["/leaderboard"] = command("leaderboard", NewLeaderboardHandler(deps))
	handlers["/myrank"] = command("myrank", NewMyRankHandler(deps))
	handlers["/winners"] = command("winners", NewWinnersHandler(deps))
	handlers["/champions"] = command("champions", NewChampionsHandler(deps))

	handlers["/spores"] = command("spores", NewSporesHandler(deps))

	handlers["/price"] = command("price", NewPriceHandler(deps))
	handlers["/ca"] = command("ca", NewContractHandler(deps))
	handlers["/trending"] = command("trending", NewTrendingHandler(deps))

	handlers["/askkingmyco"] = command("askkingmyco", NewAskHandler(deps))

	adminMiddleware := []tgbot.Middleware{AdminOnly(deps)}
	handlers["/reset_daily"] = command("reset_daily", NewResetDailyHandler(deps), adminMiddleware...)
	handlers["/xpost"] = command("xpost", NewXPostHandler(deps), adminMiddleware...)

	handlers["push_callback"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     PushCallbackData,
		Handler:     NewPushCallbackHandler(deps),
		MatchType:   tgbot.MatchTypeExact,
	}

	return handlers
}
