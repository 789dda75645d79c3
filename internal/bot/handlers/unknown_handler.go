package handlers

import (
	"context"

	"github.com/go-telegram/bot/models"
)

// unknownHandler answers unrecognized commands and ignores other content
// such as stickers.
type unknownHandler struct {
	deps HandlerDeps
}

func (h unknownHandler) Handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "unknown")
	msg := update.Message

	cmd, ok := ParseCommand(msg.Text)
	if !ok {
		log.DebugContext(ctx, "Ignoring unsupported message", "chat_id", msg.Chat.ID)
		return
	}

	log.InfoContext(ctx, "Unknown command", "chat_id", msg.Chat.ID, "command", cmd.Name)
	if err := sendPlain(ctx, h.deps, m, msg.Chat.ID, h.deps.Config.Messages.UnknownCommand); err != nil {
		log.ErrorContext(ctx, "Failed to send unknown command message", "error", err, "chat_id", msg.Chat.ID)
	}
}
