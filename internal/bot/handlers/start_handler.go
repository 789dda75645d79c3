package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/database"
)

// startHandler registers the sender and asks for their phone number.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")
	msg := update.Message

	if msg.From == nil {
		log.WarnContext(ctx, "Start handler received update without sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	profile := &database.UserProfile{
		ChatID:      msg.From.ID,
		DisplayName: msg.From.FirstName,
		Username:    msg.From.Username,
	}
	persist(ctx, h.deps, "user profile", profile.ChatID, func(ctx context.Context) error {
		return h.deps.Store.UpsertUserProfile(ctx, profile)
	})

	messages := h.deps.Config.Messages
	keyboard := &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{{
			{Text: messages.SharePhoneButton, RequestContact: true},
		}},
		OneTimeKeyboard: true,
		ResizeKeyboard:  true,
	}

	welcome := fmt.Sprintf(messages.WelcomeFmt, msg.From.FirstName)
	if err := sendPlain(ctx, h.deps, m, msg.Chat.ID, welcome, withReplyMarkup(keyboard)); err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", msg.Chat.ID)
	}
}
