package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/gemini"
	"github.com/edgard/relaybot/internal/markdown"
)

const (
	sentimentCardFmt = "🧠 *Sentiment Analysis*:\n🔮 Emotion: %s\n📈 Score: %s\n💯 Confidence: %s"
	sentimentRawFmt  = "📊 Sentiment: %s"
)

// Sentiment is the parsed Emotion|Score|Confidence answer.
type Sentiment struct {
	Emotion    string
	Score      string
	Confidence string
}

// ParseSentiment splits raw on '|' into exactly three trimmed fields.
func ParseSentiment(raw string) (Sentiment, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return Sentiment{}, fmt.Errorf("%w: want 3 fields separated by '|', got %d", markdown.ErrMalformedStructuredOutput, len(parts))
	}
	return Sentiment{
		Emotion:    strings.TrimSpace(parts[0]),
		Score:      strings.TrimSpace(parts[1]),
		Confidence: strings.TrimSpace(parts[2]),
	}, nil
}

// Card renders s as the MarkdownV2 sentiment card, before sanitizing.
func (s Sentiment) Card() string {
	return fmt.Sprintf(sentimentCardFmt, s.Emotion, s.Score, s.Confidence)
}

// sentimentText picks the replied-to message text, falling back to the
// command arguments.
func sentimentText(msg *models.Message) string {
	if reply := msg.ReplyToMessage; reply != nil {
		if text := strings.TrimSpace(reply.Text); text != "" {
			return text
		}
		if caption := strings.TrimSpace(reply.Caption); caption != "" {
			return caption
		}
	}
	cmd, _ := ParseCommand(msg.Text)
	return strings.TrimSpace(cmd.Args)
}

type sentimentHandler struct {
	deps HandlerDeps
}

func (h sentimentHandler) Handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "sentiment")
	msg := update.Message
	chatID := msg.Chat.ID
	messages := h.deps.Config.Messages

	reply := func(text string) {
		if err := sendPlain(ctx, h.deps, m, chatID, text); err != nil {
			log.ErrorContext(ctx, "Failed to send sentiment reply", "error", err, "chat_id", chatID)
		}
	}
	fail := func(text string) {
		if err := sendMarkdown(ctx, h.deps, m, chatID, text); err != nil {
			log.ErrorContext(ctx, "Failed to send sentiment error", "error", err, "chat_id", chatID)
		}
	}

	text := sentimentText(msg)
	if text == "" {
		reply(messages.SentimentPrompt)
		return
	}

	log.InfoContext(ctx, "Handling /sentiment command", "chat_id", chatID, "text_length", len(text))
	sendTyping(ctx, h.deps, m, chatID)

	raw, err := h.deps.GeminiClient.GenerateText(ctx, gemini.SentimentPrompt(text))
	switch {
	case errors.Is(err, gemini.ErrEmptyResponse):
		fail(messages.SentimentEmpty)
		return
	case err != nil:
		log.ErrorContext(ctx, "AI sentiment analysis failed", "error", err, "chat_id", chatID)
		fail(fmt.Sprintf(messages.SentimentFailedFmt, diagnostic(err)))
		return
	}

	sentiment, err := ParseSentiment(raw)
	if err != nil {
		log.WarnContext(ctx, "Sentiment output not structured, replying with raw text", "error", err, "chat_id", chatID)
		// Sent without a parse mode, so raw needs no escaping.
		reply(fmt.Sprintf(sentimentRawFmt, raw))
		return
	}

	if err := sendMarkdown(ctx, h.deps, m, chatID, sentiment.Card()); err != nil {
		log.ErrorContext(ctx, "Failed to send sentiment card", "error", err, "chat_id", chatID)
	}
}
