package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration.
const (
	DefaultLogLevel = "info"

	DefaultTelegramSendTimeout     = 10 * time.Second
	DefaultTelegramDownloadTimeout = 30 * time.Second
	DefaultTelegramMaxDownload     = 20 * 1024 * 1024 // Bot API getFile limit

	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 1.0
	DefaultGeminiTimeout     = 2 * time.Minute

	DefaultSearchBaseURL     = "https://serpapi.com"
	DefaultSearchEngine      = "google"
	DefaultSearchResultCount = 3
	DefaultSearchTimeout     = 15 * time.Second

	DefaultDBDriver        = "sqlite"
	DefaultDBPath          = "storage.db"
	DefaultMongoDatabase   = "telegrambot"
	DefaultDBTimeout       = 5 * time.Second
	DefaultMaintenanceCron = "0 0 4 * * *"
)

// DefaultMessages are the built-in user-visible strings.
var DefaultMessages = MessagesConfig{
	WelcomeFmt:         "Welcome, %s! Please share your phone number.",
	SharePhoneButton:   "📱 Share Phone Number",
	PhoneSaved:         "✅ Phone number saved successfully!",
	Help:               "Send me a message and I'll answer it with Gemini, or send a photo or document to have it described.\n\n/websearch <query> - search the web and summarize the results\n/sentiment <text> - analyze sentiment (or reply to a message)\n/help - show this message",
	EmptyAIResponse:    "I couldn't generate a response.",
	AIErrorFmt:         "⚠️ AI service error: %s",
	UnsupportedFileFmt: "⚠️ Unsupported file type: %s",
	FileDownloadError:  "⚠️ Couldn't download your file. Please try again.",
	SearchPrompt:       "🔍 Please enter a search query after /websearch",
	SearchNoResults:    "❌ No results found for your search query",
	SearchErrorFmt:     "⚠️ Error performing search: %s",
	SearchDisabled:     "🔍 Web search is not configured.",
	SentimentPrompt:    "💡 Please reply to a message or provide text after /sentiment",
	SentimentEmpty:     "❄️ Couldn't analyze sentiment",
	SentimentFailedFmt: "⚠️ Analysis failed: %s",
	UnknownCommand:     "🤔 Unknown command. Send /help to see what I can do.",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.send_timeout", DefaultTelegramSendTimeout)
	v.SetDefault("telegram.download_timeout", DefaultTelegramDownloadTimeout)
	v.SetDefault("telegram.max_download_bytes", DefaultTelegramMaxDownload)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.system_instruction", "")
	v.SetDefault("gemini.timeout", DefaultGeminiTimeout)

	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", DefaultSearchBaseURL)
	v.SetDefault("search.engine", DefaultSearchEngine)
	v.SetDefault("search.result_count", DefaultSearchResultCount)
	v.SetDefault("search.timeout", DefaultSearchTimeout)

	v.SetDefault("database.driver", DefaultDBDriver)
	v.SetDefault("database.path", DefaultDBPath)
	v.SetDefault("database.mongo_uri", "")
	v.SetDefault("database.mongo_database", DefaultMongoDatabase)
	v.SetDefault("database.timeout", DefaultDBTimeout)

	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("scheduler.tasks", map[string]any{
		"store_maintenance": map[string]any{
			"enabled":  true,
			"schedule": DefaultMaintenanceCron,
		},
	})

	m := DefaultMessages
	v.SetDefault("messages.welcome_fmt", m.WelcomeFmt)
	v.SetDefault("messages.share_phone_button", m.SharePhoneButton)
	v.SetDefault("messages.phone_saved", m.PhoneSaved)
	v.SetDefault("messages.help", m.Help)
	v.SetDefault("messages.empty_ai_response", m.EmptyAIResponse)
	v.SetDefault("messages.ai_error_fmt", m.AIErrorFmt)
	v.SetDefault("messages.unsupported_file_fmt", m.UnsupportedFileFmt)
	v.SetDefault("messages.file_download_error", m.FileDownloadError)
	v.SetDefault("messages.search_prompt", m.SearchPrompt)
	v.SetDefault("messages.search_no_results", m.SearchNoResults)
	v.SetDefault("messages.search_error_fmt", m.SearchErrorFmt)
	v.SetDefault("messages.search_disabled", m.SearchDisabled)
	v.SetDefault("messages.sentiment_prompt", m.SentimentPrompt)
	v.SetDefault("messages.sentiment_empty", m.SentimentEmpty)
	v.SetDefault("messages.sentiment_failed_fmt", m.SentimentFailedFmt)
	v.SetDefault("messages.unknown_command", m.UnknownCommand)
}
