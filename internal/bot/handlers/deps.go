package handlers

import (
	"log/slog"

	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/gemini"
	"github.com/edgard/relaybot/internal/search"
)

// HandlerDeps provides dependencies for the event handlers. Searcher may be
// nil, which disables /websearch.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Store        database.Store
	GeminiClient gemini.Client
	Searcher     search.Searcher
	Fetcher      Fetcher
}
