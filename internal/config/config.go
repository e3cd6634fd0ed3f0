// Package config manages application configuration from default values,
// an optional config.yaml file, and MYCOBOT_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration for all components of the
// MycoBot system: logging, Telegram transport, AI integration, market data,
// the button contest engine, the admin API, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Contest   ContestConfig   `mapstructure:"contest"`
	Dex       DexConfig       `mapstructure:"dexscreener"`
	API       APIConfig       `mapstructure:"api"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token and operator settings.
// BotUsername is resolved at startup via GetMe and is not read from file.
type TelegramConfig struct {
	Token          string `mapstructure:"token" validate:"required"`
	AdminUserID    int64  `mapstructure:"admin_user_id" validate:"required,gt=0"`
	AnnounceChatID int64  `mapstructure:"announce_chat_id"`

	BotUsername string `mapstructure:"-"`
}

// GeminiConfig configures the persona AI client.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	ModelName         string  `mapstructure:"model_name" validate:"required"`
	Temperature       float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	SystemInstruction string  `mapstructure:"system_instruction" validate:"required"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ContestConfig holds the button contest policy knobs. The cooldown window
// has shipped as both 30 minutes and 8 hours at different times, so it is
// configuration rather than a constant.
type ContestConfig struct {
	CooldownWindow time.Duration `mapstructure:"cooldown_window" validate:"required,min=1m"`
	PointsPerPush  int64         `mapstructure:"points_per_push" validate:"min=0"`
	HydrateLimit   int           `mapstructure:"hydrate_limit" validate:"min=1,max=3650"`
}

// DexConfig configures the DexScreener market data client. TokenAddress is
// the community token's contract address on Solana.
type DexConfig struct {
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	TokenAddress      string        `mapstructure:"token_address"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"required,min=1s,max=1m"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"min=1"`
}

// APIConfig configures the admin HTTP server. Key is compared with simple
// equality against the X-API-Key header; this is a shared secret for
// operational control, not a hardened auth scheme.
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Key     string `mapstructure:"key"`
}

// TaskConfig enables a scheduled task and sets its cron expression
// (six-field, with seconds).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

const defaultPersona = "You are King Myco, a wise and stoic mushroom king sorcerer. " +
	"Speak with measured authority, use nature metaphors and occasional dry humor, " +
	"and keep responses concise and weighty."

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	// Empty defaults so environment-only values survive Unmarshal; viper
	// ignores env vars for keys it has never seen.
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_user_id", 0)
	v.SetDefault("telegram.announce_chat_id", 0)
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("api.key", "")
	v.SetDefault("dexscreener.token_address", "")

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 1.0)
	v.SetDefault("gemini.system_instruction", defaultPersona)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 2)

	v.SetDefault("database.path", "storage.db")

	v.SetDefault("contest.cooldown_window", 30*time.Minute)
	v.SetDefault("contest.points_per_push", 10)
	v.SetDefault("contest.hydrate_limit", 365)

	v.SetDefault("dexscreener.base_url", "https://api.dexscreener.com")
	v.SetDefault("dexscreener.timeout", 10*time.Second)
	v.SetDefault("dexscreener.requests_per_second", 2.0)
	v.SetDefault("dexscreener.burst", 1)

	v.SetDefault("api.enabled", true)
	v.SetDefault("api.addr", ":8080")

	v.SetDefault("scheduler.tasks.daily_winner.enabled", true)
	v.SetDefault("scheduler.tasks.daily_winner.schedule", "0 0 0 * * *")
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 0 4 * * *")
}

// LoadConfig reads configuration from the given path (optional), applies
// defaults and environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("MYCOBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; a malformed one is not.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		slog.Info("Config file not found, using defaults and environment", "path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.API.Enabled && cfg.API.Key == "" {
		return nil, fmt.Errorf("api.key is required when the admin API is enabled")
	}

	return cfg, nil
}
