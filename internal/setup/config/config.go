package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrMissingToken          = errors.New("discord token is not set")
	ErrMissingGroup          = errors.New("moderation group is not set")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v1.0.0"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentBotVersion    = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	Bot    BotConfig
}

// CommonConfig contains configuration shared by every command.
type CommonConfig struct {
	// Version of the common config.
	Version        int            `koanf:"version"`
	Debug          Debug          `koanf:"debug"`
	CircuitBreaker CircuitBreaker `koanf:"circuit_breaker"`
	Retry          Retry          `koanf:"retry"`
	PostgreSQL     PostgreSQL     `koanf:"postgresql"`
	Redis          Redis          `koanf:"redis"`
	OpenAI         OpenAI         `koanf:"openai"`
	Gemini         Gemini         `koanf:"gemini"`
	Telemetry      Telemetry      `koanf:"telemetry"`
}

// BotConfig contains Discord bot specific configuration.
type BotConfig struct {
	// Version of the bot config.
	Version int `koanf:"version"`
	// Discord configuration.
	Discord Discord `koanf:"discord"`
	// Moderation workflow configuration.
	Moderation Moderation `koanf:"moderation"`
	// Classifier used to score forwarded messages.
	Classifier Classifier `koanf:"classifier"`
	// Session registry configuration.
	Registry Registry `koanf:"registry"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log files to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
	// Enable the debug server with pprof and metrics.
	EnableDebugServer bool `koanf:"enable_debug_server"`
	// Debug server port.
	DebugPort int `koanf:"debug_port"`
}

// CircuitBreaker contains circuit breaker configuration.
type CircuitBreaker struct {
	// Maximum number of requests allowed to pass through when the circuit is half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// The cyclic period of the closed state for the circuit breaker to clear the internal counts, in milliseconds.
	Interval int `koanf:"interval"`
	// The period of the open state after which the state of the circuit breaker becomes half-open, in milliseconds.
	Timeout int `koanf:"timeout"`
	// Consecutive failures that open the circuit.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures"`
}

// Retry contains retry configuration.
type Retry struct {
	// Maximum retry attempts.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial retry delay in milliseconds.
	Delay int `koanf:"delay"`
	// Maximum retry delay in milliseconds.
	MaxDelay int `koanf:"max_delay"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Enable the audit log database. When false reports are not persisted.
	Enabled bool `koanf:"enabled"`
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// OpenAI contains OpenAI API configuration.
type OpenAI struct {
	// Base URL for the API
	BaseURL string `koanf:"base_url"`
	// API key for authentication
	APIKey string `koanf:"api_key"`
	// Maximum concurrent requests
	MaxConcurrent int64 `koanf:"max_concurrent"`
	// Model used by the moderation endpoint
	ModerationModel string `koanf:"moderation_model"`
	// Chat model used for policy classification
	PolicyModel string `koanf:"policy_model"`
}

// Gemini contains Google Gemini API configuration.
type Gemini struct {
	// API key for authentication
	APIKey string `koanf:"api_key"`
	// Model name
	Model string `koanf:"model"`
	// Maximum concurrent requests
	MaxConcurrent int64 `koanf:"max_concurrent"`
}

// Telemetry contains tracing configuration.
type Telemetry struct {
	// Enable trace export
	Enabled bool `koanf:"enabled"`
	// Uptrace DSN
	DSN string `koanf:"dsn"`
	// Deployment environment reported with every span
	Environment string `koanf:"environment"`
}

// Discord contains Discord bot configuration.
type Discord struct {
	// Discord bot token for authentication.
	Token string `koanf:"token"`
}

// Moderation contains the report workflow configuration.
type Moderation struct {
	// Group identifier used to name the moderator and monitored channels.
	Group string `koanf:"group"`
	// Ban the reported user from the guild when moderators choose ban.
	EnforceBans bool `koanf:"enforce_bans"`
}

// Classifier selects how forwarded messages are scored.
type Classifier struct {
	// Backends to run: echo, openai_moderation, openai_policy, gemini. Empty disables scoring.
	Backends []string `koanf:"backends"`
	// Timeout for one classification in milliseconds.
	Timeout int `koanf:"timeout"`
	// Path to the moderation policy used by the openai_policy and gemini backends.
	PolicyFile string `koanf:"policy_file"`
	// Minutes to cache results in Redis. 0 disables the cache.
	CacheTTL int `koanf:"cache_ttl"`
}

// Registry selects where sessions are stored.
type Registry struct {
	// Backend is memory or redis.
	Backend string `koanf:"backend"`
	// Hours before an untouched session expires. 0 keeps sessions until resolved. Redis only.
	SessionTTL int `koanf:"session_ttl"`
}

// LoadConfig loads the configuration from the config search paths.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".modreport",
		homeDir + "/.modreport/config",
		"/etc/modreport/config",
		"/app/config",
		"config",
		".",
	}

	return LoadConfigFrom(configPaths)
}

// LoadConfigFrom loads common.toml and bot.toml from the first path containing each.
func LoadConfigFrom(configPaths []string) (*Config, string, error) {
	var (
		config         Config
		usedConfigPath string
	)

	targets := []struct {
		name string
		dst  any
	}{
		{name: "common", dst: &config.Common},
		{name: "bot", dst: &config.Bot},
	}

	for _, target := range targets {
		k := koanf.New(".")
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, target.name)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, target.name)
		}

		if err := k.Unmarshal("", target.dst); err != nil {
			return nil, "", fmt.Errorf("error unmarshaling %s config: %w", target.name, err)
		}
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("bot", config.Bot.Version, CurrentBotVersion); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// Validate checks the settings the bot cannot start without.
func (c *BotConfig) Validate() error {
	if c.Discord.Token == "" {
		return ErrMissingToken
	}

	if c.Moderation.Group == "" {
		return ErrMissingGroup
	}

	return nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/robalyx/modreport/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
