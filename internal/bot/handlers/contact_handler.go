package handlers

import (
	"context"

	"github.com/go-telegram/bot/models"
)

type contactHandler struct {
	deps HandlerDeps
}

func (h contactHandler) Handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "contact")
	msg := update.Message
	contact := msg.Contact

	// The profile is keyed by the contact's own user id. Contacts without
	// one fall back to the sender.
	owner := contact.UserID
	if owner == 0 && msg.From != nil {
		owner = msg.From.ID
	}
	if owner == 0 {
		owner = msg.Chat.ID
	}

	log.InfoContext(ctx, "Handling contact share", "chat_id", msg.Chat.ID, "owner_id", owner)

	persist(ctx, h.deps, "phone number", owner, func(ctx context.Context) error {
		return h.deps.Store.SetPhoneNumber(ctx, owner, contact.PhoneNumber)
	})

	removeKeyboard := &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	if err := sendPlain(ctx, h.deps, m, msg.Chat.ID, h.deps.Config.Messages.PhoneSaved, withReplyMarkup(removeKeyboard)); err != nil {
		log.ErrorContext(ctx, "Failed to send phone confirmation", "error", err, "chat_id", msg.Chat.ID)
	}
}
