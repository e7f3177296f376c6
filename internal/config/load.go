package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REMIND"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the config file at path when path is
// not empty. A missing default config.yaml is not an error; a missing
// explicit path is.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("storage.driver", "diskv")
	v.SetDefault("storage.path", "data")
	v.SetDefault("storage.database_url", "")

	v.SetDefault("push.enabled", false)
	v.SetDefault("push.app_id", "")
	v.SetDefault("push.api_key", "")
	v.SetDefault("push.base_url", "https://onesignal.com/api/v1")
	v.SetDefault("push.safety_buffer", 10*time.Second)
	v.SetDefault("push.language", "en")
	v.SetDefault("push.request_timeout", 10*time.Second)

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.initial_permission", "default")
	v.SetDefault("notifications.prompt_timeout", 30*time.Second)
	v.SetDefault("notifications.origin", "http://localhost:8080")
	v.SetDefault("notifications.sound", true)

	v.SetDefault("reminder.handshake_timeout", 2*time.Second)
	v.SetDefault("reminder.activation_delay", 0)
	v.SetDefault("reminder.subscription_retries", 1)
	v.SetDefault("reminder.subscription_prompt_timeout", 15*time.Second)
	v.SetDefault("reminder.history_size", 100)
	v.SetDefault("reminder.inbox_size", 64)
}
