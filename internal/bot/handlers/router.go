// Package handlers routes Telegram updates to the bot's event handlers and
// contains the handlers themselves along with their registration logic.
package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/relaybot/internal/logger"
)

// EventHandler handles one classified update.
type EventHandler func(ctx context.Context, m Messenger, update *models.Update)

// Router classifies updates and dispatches them to the matching handler.
// It holds no mutable state and is safe for concurrent use.
type Router struct {
	deps     HandlerDeps
	handlers map[EventKind]EventHandler
}

// NewRouter builds a Router with every event handler wired to deps.
func NewRouter(deps HandlerDeps) *Router {
	deps.Logger = deps.Logger.With("component", "router")
	return &Router{
		deps: deps,
		handlers: map[EventKind]EventHandler{
			EventStart:     startHandler{deps}.Handle,
			EventHelp:      helpHandler{deps}.Handle,
			EventContact:   contactHandler{deps}.Handle,
			EventText:      textHandler{deps}.Handle,
			EventFile:      fileHandler{deps}.Handle,
			EventSearch:    websearchHandler{deps}.Handle,
			EventSentiment: sentimentHandler{deps}.Handle,
			EventUnknown:   unknownHandler{deps}.Handle,
		},
	}
}

// Dispatch classifies update and runs its handler.
func (r *Router) Dispatch(ctx context.Context, m Messenger, update *models.Update) {
	log := r.deps.Logger.With("event_id", logger.EventID(ctx))

	if update == nil || update.Message == nil {
		log.DebugContext(ctx, "Ignoring update without message")
		return
	}

	if cmd, ok := ParseCommand(update.Message.Text); ok && !r.addressedToUs(cmd) {
		log.DebugContext(ctx, "Ignoring command addressed to another bot", "command", cmd.Name, "target", cmd.Target)
		return
	}

	kind := Classify(update)
	log.DebugContext(ctx, "Dispatching update", "event", kind.String(), "chat_id", update.Message.Chat.ID)
	r.handlers[kind](ctx, m, update)
}

func (r *Router) addressedToUs(cmd Command) bool {
	if cmd.Target == "" {
		return true
	}
	info := r.deps.Config.Telegram.BotInfo
	if info == nil || info.Username == "" {
		return true
	}
	return strings.EqualFold(cmd.Target, info.Username)
}

// Handler adapts the Router to a go-telegram handler.
func (r *Router) Handler() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		r.Dispatch(ctx, b, update)
	}
}
