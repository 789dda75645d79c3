// Package config loads and validates the relaybot configuration from defaults,
// an optional YAML file and the environment.
package config

import (
	"errors"
	"time"

	"github.com/go-telegram/bot/models"
)

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config is the complete application configuration.
type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Search    SearchConfig    `mapstructure:"search"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// TelegramConfig holds the transport settings. BotInfo is filled at runtime
// from getMe and is never read from configuration.
type TelegramConfig struct {
	Token            string        `mapstructure:"token"              validate:"required"`
	SendTimeout      time.Duration `mapstructure:"send_timeout"       validate:"min=1s,max=5m"`
	DownloadTimeout  time.Duration `mapstructure:"download_timeout"   validate:"min=1s,max=10m"`
	MaxDownloadBytes int64         `mapstructure:"max_download_bytes" validate:"min=1024"`

	BotInfo *models.User `mapstructure:"-"`
}

// GeminiConfig configures the generative model client.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"            validate:"required"`
	ModelName         string        `mapstructure:"model_name"         validate:"required"`
	Temperature       float32       `mapstructure:"temperature"        validate:"min=0,max=2"`
	SystemInstruction string        `mapstructure:"system_instruction"`
	Timeout           time.Duration `mapstructure:"timeout"            validate:"min=1s,max=10m"`
}

// SearchConfig configures the SerpAPI client. An empty APIKey disables /websearch.
type SearchConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"     validate:"required,url"`
	Engine      string        `mapstructure:"engine"       validate:"required"`
	ResultCount int           `mapstructure:"result_count" validate:"min=1,max=10"`
	Timeout     time.Duration `mapstructure:"timeout"      validate:"min=1s,max=5m"`
}

// DatabaseConfig selects and configures the persistence backend.
type DatabaseConfig struct {
	Driver        string        `mapstructure:"driver"         validate:"oneof=sqlite mongo"`
	Path          string        `mapstructure:"path"           validate:"required_if=Driver sqlite"`
	MongoURI      string        `mapstructure:"mongo_uri"      validate:"required_if=Driver mongo"`
	MongoDatabase string        `mapstructure:"mongo_database" validate:"required_if=Driver mongo"`
	Timeout       time.Duration `mapstructure:"timeout"        validate:"min=100ms,max=5m"`
}

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// SchedulerConfig lists scheduled tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task on a six-field cron schedule (seconds first).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds every user-visible string. Entries ending in "Fmt"
// are fmt format strings.
type MessagesConfig struct {
	WelcomeFmt         string `mapstructure:"welcome_fmt"          validate:"required"`
	SharePhoneButton   string `mapstructure:"share_phone_button"   validate:"required"`
	PhoneSaved         string `mapstructure:"phone_saved"          validate:"required"`
	Help               string `mapstructure:"help"                 validate:"required"`
	EmptyAIResponse    string `mapstructure:"empty_ai_response"    validate:"required"`
	AIErrorFmt         string `mapstructure:"ai_error_fmt"         validate:"required"`
	UnsupportedFileFmt string `mapstructure:"unsupported_file_fmt" validate:"required"`
	FileDownloadError  string `mapstructure:"file_download_error"  validate:"required"`
	SearchPrompt       string `mapstructure:"search_prompt"        validate:"required"`
	SearchNoResults    string `mapstructure:"search_no_results"    validate:"required"`
	SearchErrorFmt     string `mapstructure:"search_error_fmt"     validate:"required"`
	SearchDisabled     string `mapstructure:"search_disabled"      validate:"required"`
	SentimentPrompt    string `mapstructure:"sentiment_prompt"     validate:"required"`
	SentimentEmpty     string `mapstructure:"sentiment_empty"      validate:"required"`
	SentimentFailedFmt string `mapstructure:"sentiment_failed_fmt" validate:"required"`
	UnknownCommand     string `mapstructure:"unknown_command"      validate:"required"`
}
