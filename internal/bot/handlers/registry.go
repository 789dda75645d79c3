package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler describes a command handler and the middleware wrapped
// around it.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns the bot commands keyed by their slash form.
// Every command goes through the Router so the /cmd@botname form and the
// default handler behave the same way.
func RegisterAllCommands(r *Router) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	for name := range commandKinds {
		handlers["/"+name] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     name,
			Handler:     r.Handler(),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	return handlers
}
