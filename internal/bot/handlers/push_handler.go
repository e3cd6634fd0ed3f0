package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewPushHandler returns a handler for the /buttonpush command. It presents
// the sacred button as an inline keyboard; the actual push happens in the
// callback handler.
func NewPushHandler(deps HandlerDeps) bot.HandlerFunc {
	return pushHandler{deps}.Handle
}

type pushHandler struct {
	deps HandlerDeps
}

func (h pushHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "buttonpush")

	if update.Message == nil || update.Message.From == nil {
		return
	}

	status := h.deps.Ledger.CooldownStatus(update.Message.From.ID)
	text := "The sacred button awaits. Push it and the spores shall flow."
	if !status.CanPush {
		text = fmt.Sprintf("The button still slumbers for you. Return in %d minutes.", status.MinutesLeft)
	}

	kb := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🍄 PUSH", CallbackData: PushCallbackData}},
		},
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send push prompt", "error", err, "chat_id", update.Message.Chat.ID)
	}
}

// NewPushCallbackHandler returns the handler for the inline push button. It
// records the push attempt and reports the outcome back to the chat.
func NewPushCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return pushCallbackHandler{deps}.Handle
}

type pushCallbackHandler struct {
	deps HandlerDeps
}

func (h pushCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "push_callback")

	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	user := cb.From
	result := h.deps.Ledger.RecordPush(user.ID, displayName(&user))

	var toast, announcement string
	if result.Success {
		toast = fmt.Sprintf("+%d spores!", result.PointsAwarded)
		announcement = fmt.Sprintf("%s pushed the sacred button! Push #%d, %d spores earned.",
			displayName(&user), result.TotalPushes, result.PointsAwarded)
		log.InfoContext(ctx, "Button push recorded", "user_id", user.ID, "total_pushes", result.TotalPushes)
	} else {
		toast = fmt.Sprintf("Patience. %d minutes remain.", result.CooldownMinutes)
		log.DebugContext(ctx, "Button push rejected by cooldown", "user_id", user.ID, "minutes_left", result.CooldownMinutes)
	}

	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
		Text:            toast,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer push callback", "error", err)
	}

	if announcement != "" && cb.Message.Message != nil {
		reply(ctx, b, log, cb.Message.Message.Chat.ID, announcement)
	}
}
