package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/gemini"
	"github.com/edgard/relaybot/internal/search"
)

const searchReplyFmt = "🔍 *Web Search Results for* '%s':\n\n%s"

// websearchHandler summarizes web results for the /websearch query.
type websearchHandler struct {
	deps HandlerDeps
}

func (h websearchHandler) Handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "websearch")
	msg := update.Message
	chatID := msg.Chat.ID
	messages := h.deps.Config.Messages

	reply := func(text string) {
		if err := sendPlain(ctx, h.deps, m, chatID, text); err != nil {
			log.ErrorContext(ctx, "Failed to send search reply", "error", err, "chat_id", chatID)
		}
	}
	fail := func(text string) {
		if err := sendMarkdown(ctx, h.deps, m, chatID, text); err != nil {
			log.ErrorContext(ctx, "Failed to send search error", "error", err, "chat_id", chatID)
		}
	}

	if h.deps.Searcher == nil {
		reply(messages.SearchDisabled)
		return
	}

	cmd, _ := ParseCommand(msg.Text)
	query := strings.TrimSpace(cmd.Args)
	if query == "" {
		reply(messages.SearchPrompt)
		return
	}

	log.InfoContext(ctx, "Handling /websearch command", "chat_id", chatID, "query", query)
	sendTyping(ctx, h.deps, m, chatID)

	results, err := h.deps.Searcher.Search(ctx, query, h.deps.Config.Search.ResultCount)
	switch {
	case errors.Is(err, search.ErrNoResults):
		log.InfoContext(ctx, "Search returned no results", "chat_id", chatID)
		fail(messages.SearchNoResults)
		return
	case err != nil:
		log.ErrorContext(ctx, "Search failed", "error", err, "chat_id", chatID)
		fail(fmt.Sprintf(messages.SearchErrorFmt, diagnostic(err)))
		return
	}

	summary, err := h.deps.GeminiClient.GenerateText(ctx, gemini.SearchSummaryPrompt(search.FormatResults(results)))
	switch {
	case errors.Is(err, gemini.ErrEmptyResponse):
		summary = messages.EmptyAIResponse
	case err != nil:
		log.ErrorContext(ctx, "AI search summary failed", "error", err, "chat_id", chatID)
		replyAIError(ctx, h.deps, m, chatID, err)
		return
	}

	if err := sendMarkdown(ctx, h.deps, m, chatID, fmt.Sprintf(searchReplyFmt, query, summary), withoutLinkPreview()); err != nil {
		log.ErrorContext(ctx, "Failed to send search summary", "error", err, "chat_id", chatID)
	}
}
