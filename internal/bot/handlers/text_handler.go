package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/gemini"
)

// textHandler answers plain text with the model and records the turn.
type textHandler struct {
	deps HandlerDeps
}

func (h textHandler) Handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")
	msg := update.Message
	chatID := msg.Chat.ID

	log.InfoContext(ctx, "Handling text message", "chat_id", chatID, "message_id", msg.ID)
	sendTyping(ctx, h.deps, m, chatID)

	answer, err := h.deps.GeminiClient.GenerateText(ctx, msg.Text)
	if err != nil {
		log.ErrorContext(ctx, "AI text generation failed", "error", err, "chat_id", chatID)
		replyAIError(ctx, h.deps, m, chatID, err)
		return
	}

	if err := sendMarkdown(ctx, h.deps, m, chatID, answer); err != nil {
		log.ErrorContext(ctx, "Failed to send AI reply", "error", err, "chat_id", chatID)
	}

	persist(ctx, h.deps, "chat turn", chatID, func(ctx context.Context) error {
		return h.deps.Store.SaveChatTurn(ctx, &database.ChatTurn{
			ChatID:      chatID,
			UserMessage: msg.Text,
			BotResponse: answer,
		})
	})
}

// replyAIError tells the user the AI call failed.
func replyAIError(ctx context.Context, deps HandlerDeps, m Messenger, chatID int64, err error) {
	messages := deps.Config.Messages
	text := fmt.Sprintf(messages.AIErrorFmt, diagnostic(err))

	var mediaErr *gemini.UnsupportedMediaError
	switch {
	case errors.Is(err, gemini.ErrEmptyResponse):
		text = messages.EmptyAIResponse
	case errors.As(err, &mediaErr):
		text = fmt.Sprintf(messages.UnsupportedFileFmt, mediaErr.MIMEType)
	}

	if sendErr := sendMarkdown(ctx, deps, m, chatID, text); sendErr != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send AI error message", "error", sendErr, "chat_id", chatID)
	}
}
