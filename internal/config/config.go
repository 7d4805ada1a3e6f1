package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	SQLitePath  string
	NATSURL     string
	MasterKey   string
	CallTimeout time.Duration
	MaxInFlight int64

	// Provider keys used when a model carries no stored credential.
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GoogleAPIKey    string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// FallbackKeys maps each provider to its environment-level API key.
func (c Config) FallbackKeys() map[string]string {
	return map[string]string{
		"openai":    c.OpenAIAPIKey,
		"anthropic": c.AnthropicAPIKey,
		"google":    c.GoogleAPIKey,
	}
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ARENA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Arena API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("sqlite.path", "arena.db")
	v.SetDefault("call_timeout_ms", 0)
	v.SetDefault("max_inflight", 0)

	timeoutMs := v.GetInt("call_timeout_ms")
	if timeoutMs < 0 {
		return Config{}, fmt.Errorf("call timeout must not be negative")
	}

	maxInFlight := v.GetInt64("max_inflight")
	if maxInFlight < 0 {
		return Config{}, fmt.Errorf("max inflight must not be negative")
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		SQLitePath:      v.GetString("sqlite.path"),
		NATSURL:         v.GetString("nats.url"),
		MasterKey:       v.GetString("master_key"),
		CallTimeout:     time.Duration(timeoutMs) * time.Millisecond,
		MaxInFlight:     maxInFlight,
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		GoogleAPIKey:    v.GetString("google_api_key"),
	}

	if cfg.MasterKey == "" {
		return Config{}, fmt.Errorf("master key must be provided")
	}

	return cfg, nil
}
