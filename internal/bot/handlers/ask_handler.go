package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewAskHandler returns a handler for the /askkingmyco command, which routes
// a question to the persona AI.
func NewAskHandler(deps HandlerDeps) bot.HandlerFunc {
	return askHandler{deps}.Handle
}

type askHandler struct {
	deps HandlerDeps
}

func (h askHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "askkingmyco")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	question := commandArgs(update.Message.Text)
	if question == "" {
		reply(ctx, b, log, chatID, "Ask and the king shall answer: /askkingmyco <your question>")
		return
	}

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})

	answer, err := h.deps.GeminiClient.GenerateReply(ctx, displayName(update.Message.From), question)
	if err != nil {
		log.ErrorContext(ctx, "Persona reply generation failed", "error", err)
		reply(ctx, b, log, chatID, "The king is deep in meditation. Ask again later.")
		return
	}

	reply(ctx, b, log, chatID, answer)
}

// NewXPostHandler returns a handler for the admin /xpost command, which
// drafts a persona-voiced social post on a topic.
func NewXPostHandler(deps HandlerDeps) bot.HandlerFunc {
	return xPostHandler{deps}.Handle
}

type xPostHandler struct {
	deps HandlerDeps
}

func (h xPostHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "xpost")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	topic := commandArgs(update.Message.Text)
	if topic == "" {
		reply(ctx, b, log, chatID, "Usage: /xpost <topic>")
		return
	}

	post, err := h.deps.GeminiClient.GeneratePost(ctx, topic)
	if err != nil {
		log.ErrorContext(ctx, "Persona post generation failed", "error", err)
		reply(ctx, b, log, chatID, "Could not draft a post right now.")
		return
	}

	reply(ctx, b, log, chatID, "Draft post:\n\n"+post)
}
