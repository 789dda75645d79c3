package handlers

import (
	"context"

	"github.com/go-telegram/bot/models"
)

// helpHandler lists the available commands.
type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Handling /help command", "chat_id", chatID)

	if err := sendPlain(ctx, h.deps, m, chatID, h.deps.Config.Messages.Help); err != nil {
		log.ErrorContext(ctx, "Failed to send help message", "error", err, "chat_id", chatID)
	}
}
