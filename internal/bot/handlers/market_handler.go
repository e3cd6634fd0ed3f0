package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const trendingSize = 5

// NewPriceHandler returns a handler for the /price command.
func NewPriceHandler(deps HandlerDeps) bot.HandlerFunc {
	return priceHandler{deps}.Handle
}

type priceHandler struct {
	deps HandlerDeps
}

func (h priceHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "price")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	address := h.deps.Config.Dex.TokenAddress
	if args := commandArgs(update.Message.Text); args != "" {
		address = args
	}
	if address == "" {
		reply(ctx, b, log, chatID, "No token address configured. Use /price <contract address>.")
		return
	}

	snap, err := h.deps.DexClient.TokenInfo(ctx, address)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch token info", "address", address, "error", err)
		reply(ctx, b, log, chatID, "The market spirits are not answering. Try again shortly.")
		return
	}
	if snap == nil {
		reply(ctx, b, log, chatID, "No trading pairs found for that address.")
		return
	}

	direction := "📈"
	if snap.PriceChange24h < 0 {
		direction = "📉"
	}
	reply(ctx, b, log, chatID, fmt.Sprintf(
		"%s %s ($%s)\nPrice: $%.8f\n24h: %+.2f%% %s\nVolume 24h: $%.0f\nLiquidity: $%.0f\n%s",
		snap.Name, snap.Symbol, snap.Symbol, snap.PriceUsd, snap.PriceChange24h, direction,
		snap.Volume24h, snap.LiquidityUsd, snap.URL))
}

// NewContractHandler returns a handler for the /ca command, echoing the
// community token's contract address.
func NewContractHandler(deps HandlerDeps) bot.HandlerFunc {
	return contractHandler{deps}.Handle
}

type contractHandler struct {
	deps HandlerDeps
}

func (h contractHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "ca")

	if update.Message == nil {
		return
	}

	address := h.deps.Config.Dex.TokenAddress
	if address == "" {
		reply(ctx, b, log, update.Message.Chat.ID, "No contract address configured yet.")
		return
	}
	reply(ctx, b, log, update.Message.Chat.ID, "Contract address:\n"+address)
}

// NewTrendingHandler returns a handler for the /trending command.
func NewTrendingHandler(deps HandlerDeps) bot.HandlerFunc {
	return trendingHandler{deps}.Handle
}

type trendingHandler struct {
	deps HandlerDeps
}

func (h trendingHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "trending")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	trending, err := h.deps.DexClient.TrendingSolana(ctx, trendingSize)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch trending pairs", "error", err)
		reply(ctx, b, log, chatID, "The market spirits are not answering. Try again shortly.")
		return
	}
	if len(trending) == 0 {
		reply(ctx, b, log, chatID, "Nothing is trending on Solana right now.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🔥 Trending on Solana\n\n")
	for i, snap := range trending {
		sb.WriteString(fmt.Sprintf("%d. %s ($%s) - $%.6f, 24h vol $%.0f\n",
			i+1, snap.Name, snap.Symbol, snap.PriceUsd, snap.Volume24h))
	}
	reply(ctx, b, log, chatID, sb.String())
}
