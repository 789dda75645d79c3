package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every automatically bound environment variable, e.g.
// RELAYBOT_GEMINI_MODEL_NAME for gemini.model_name.
const EnvPrefix = "RELAYBOT"

// legacyEnv maps configuration keys to the additional environment variable
// names used by existing deployments. The first non-empty variable wins.
var legacyEnv = map[string][]string{
	"telegram.token":     {"TELEGRAM_BOT_TOKEN"},
	"gemini.api_key":     {"GOOGE_GEMINI_KEY", "GEMINI_API_KEY"},
	"search.api_key":     {"SERPAPI_KEY"},
	"database.mongo_uri": {"MONGODB_URI"},
}

// LoadConfig builds the configuration from defaults, the YAML file at path
// (a missing file is not an error) and the environment, then validates it.
func LoadConfig(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	slog.Debug("Configuration loaded",
		"database_driver", cfg.Database.Driver,
		"gemini_model", cfg.Gemini.ModelName,
		"search_enabled", cfg.Search.APIKey != "",
		"log_level", cfg.Logger.Level)
	return cfg, nil
}

// LoadDatabaseConfig loads the configuration like LoadConfig but validates
// only the database and logger sections, for commands that never talk to
// Telegram or Gemini.
func LoadDatabaseConfig(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	validate := validator.New()
	for _, section := range []any{&cfg.Database, &cfg.Logger} {
		if err := validate.Struct(section); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, fmt.Errorf("%w: failed to bind env for %s: %v", ErrConfiguration, key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: failed to read config file %s: %v", ErrConfiguration, path, err)
			}
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}
	return cfg, nil
}

// Validate checks struct constraints on cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrConfiguration)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}
