package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"        validate:"required"`
	Storage       StorageConfig       `mapstructure:"storage"       validate:"required"`
	Push          PushConfig          `mapstructure:"push"`
	Notifications NotificationsConfig `mapstructure:"notifications" validate:"required"`
	Reminder      ReminderConfig      `mapstructure:"reminder"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig selects where the todo list and theme preference live.
type StorageConfig struct {
	// Driver is either "diskv" (local key/value files) or "postgres".
	Driver      string `mapstructure:"driver"       validate:"required,oneof=diskv postgres"`
	Path        string `mapstructure:"path"         validate:"required_if=Driver diskv"`
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=Driver postgres"`
}

// PushConfig configures the remote push-delivery service (OneSignal).
type PushConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	AppID   string `mapstructure:"app_id"   validate:"required_if=Enabled true"`
	APIKey  string `mapstructure:"api_key"  validate:"required_if=Enabled true"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// SafetyBuffer is added to every scheduled delivery so the remote API
	// never sees a near-past timestamp.
	SafetyBuffer time.Duration `mapstructure:"safety_buffer"   validate:"min=5s"`
	Language     string        `mapstructure:"language"        validate:"required"`
	Timeout      time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

// NotificationsConfig configures the host notification capability.
type NotificationsConfig struct {
	// Enabled is false when the host has no notification capability at
	// all; permission then always reads as denied.
	Enabled           bool          `mapstructure:"enabled"`
	InitialPermission string        `mapstructure:"initial_permission" validate:"required,oneof=granted denied default"`
	PromptTimeout     time.Duration `mapstructure:"prompt_timeout"     validate:"gt=0"`
	Origin            string        `mapstructure:"origin"             validate:"required,url"`
	Sound             bool          `mapstructure:"sound"`
}

// ReminderConfig tunes the escalation policy and the background context.
type ReminderConfig struct {
	HandshakeTimeout          time.Duration `mapstructure:"handshake_timeout"           validate:"gt=0"`
	ActivationDelay           time.Duration `mapstructure:"activation_delay"            validate:"gte=0"`
	SubscriptionRetries       int           `mapstructure:"subscription_retries"        validate:"gte=0,lte=3"`
	SubscriptionPromptTimeout time.Duration `mapstructure:"subscription_prompt_timeout" validate:"gt=0"`
	HistorySize               int           `mapstructure:"history_size"                validate:"gt=0"`
	InboxSize                 int           `mapstructure:"inbox_size"                  validate:"gt=0"`
}
