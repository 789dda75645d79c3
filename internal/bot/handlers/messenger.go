package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/gemini"
	"github.com/edgard/relaybot/internal/markdown"
	"github.com/edgard/relaybot/internal/search"
)

// Messenger is the part of the Telegram client used by the handlers.
// *bot.Bot satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

var _ Messenger = (*bot.Bot)(nil)

type sendOption func(*bot.SendMessageParams)

func withReplyMarkup(markup models.ReplyMarkup) sendOption {
	return func(p *bot.SendMessageParams) { p.ReplyMarkup = markup }
}

func withoutLinkPreview() sendOption {
	return func(p *bot.SendMessageParams) {
		disabled := true
		p.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: &disabled}
	}
}

func isEntityParseError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}

// maxMessageLength is the Bot API limit on message text, in UTF-16 code units.
const maxMessageLength = 4096

// sendPlain sends text with no parse mode, split into as many messages as
// the length limit requires.
func sendPlain(ctx context.Context, deps HandlerDeps, m Messenger, chatID int64, text string, opts ...sendOption) error {
	var errs []error
	for _, part := range markdown.Split(text, maxMessageLength) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		params := &bot.SendMessageParams{ChatID: chatID, Text: part}
		for _, opt := range opts {
			opt(params)
		}
		if err := send(ctx, deps, m, params); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sendMarkdown sanitizes text once and sends it as MarkdownV2, split into as
// many messages as the length limit requires. A part whose entities Telegram
// rejects is resent once as plain text with the escape backslashes removed.
func sendMarkdown(ctx context.Context, deps HandlerDeps, m Messenger, chatID int64, text string, opts ...sendOption) error {
	parts := markdown.Split(markdown.Sanitize(text), maxMessageLength)
	if len(parts) > 1 {
		deps.Logger.DebugContext(ctx, "Splitting long reply", "chat_id", chatID, "parts", len(parts))
	}

	var errs []error
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if err := sendMarkdownPart(ctx, deps, m, chatID, part, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sendMarkdownPart(ctx context.Context, deps HandlerDeps, m Messenger, chatID int64, sanitized string, opts []sendOption) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sanitized,
		ParseMode: models.ParseModeMarkdown,
	}
	for _, opt := range opts {
		opt(params)
	}

	err := send(ctx, deps, m, params)
	if !isEntityParseError(err) {
		return err
	}

	deps.Logger.WarnContext(ctx, "Telegram rejected MarkdownV2 entities, resending as plain text", "chat_id", chatID, "error", err)
	params.ParseMode = ""
	params.Text = markdown.Unescape(sanitized)
	return send(ctx, deps, m, params)
}

func send(ctx context.Context, deps HandlerDeps, m Messenger, params *bot.SendMessageParams) error {
	sendCtx, cancel := context.WithTimeout(ctx, deps.Config.Telegram.SendTimeout)
	defer cancel()
	_, err := m.SendMessage(sendCtx, params)
	return err
}

// sendTyping shows the typing indicator. Failures only get logged.
func sendTyping(ctx context.Context, deps HandlerDeps, m Messenger, chatID int64) {
	sendCtx, cancel := context.WithTimeout(ctx, deps.Config.Telegram.SendTimeout)
	defer cancel()
	if _, err := m.SendChatAction(sendCtx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping}); err != nil {
		deps.Logger.DebugContext(ctx, "Failed to send typing action", "chat_id", chatID, "error", err)
	}
}

// persist runs a store write under the database timeout. Failures are
// logged and never reach the user.
func persist(ctx context.Context, deps HandlerDeps, what string, chatID int64, write func(context.Context) error) {
	dbCtx, cancel := context.WithTimeout(ctx, deps.Config.Database.Timeout)
	defer cancel()
	if err := write(dbCtx); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to persist "+what, "chat_id", chatID, "error", err)
		return
	}
	deps.Logger.DebugContext(ctx, "Persisted "+what, "chat_id", chatID)
}

// diagnostic returns a short user-facing description of an adapter error.
func diagnostic(err error) string {
	var aiErr *gemini.AIError
	var mediaErr *gemini.UnsupportedMediaError
	var transportErr *search.TransportError
	switch {
	case errors.As(err, &aiErr):
		return aiErr.Reason
	case errors.As(err, &mediaErr):
		return mediaErr.MIMEType
	case errors.As(err, &transportErr):
		return transportErr.Err.Error()
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}
