package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication and session settings.
type AuthConfig struct {
	// JWTSecret signs the session cookie tokens. Must be long enough
	// to resist brute force against HMAC-SHA256.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// SessionLifetimeMinutes controls how long a login session stays valid.
	SessionLifetimeMinutes int `mapstructure:"session_lifetime_minutes" validate:"required,gt=0"`
}

// SMTPConfig contains settings for the outbound mail notifier.
// An empty Host disables real sending; notifications are logged instead.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"     validate:"omitempty,email"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}
