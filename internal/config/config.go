package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"     validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains the settings consumed by the token signer, the
// credential hasher and the account lifecycle engine.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the validity window of a session token.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// VerificationWindowHours is how long an email-verification token stays valid.
	VerificationWindowHours int `mapstructure:"verification_window_hours" validate:"required,gt=0"`

	BcryptCost int `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// MailConfig selects and configures the outbound email notifier.
type MailConfig struct {
	// Provider is "log" for development or "resend" for the Resend HTTP API.
	Provider    string `mapstructure:"provider"      validate:"required,oneof=log resend"`
	FromAddress string `mapstructure:"from_address"  validate:"required,email"`
	FromName    string `mapstructure:"from_name"`
	APIKey      string `mapstructure:"api_key"       validate:"required_if=Provider resend"`
	Endpoint    string `mapstructure:"endpoint"      validate:"required,url"`
	LinkBaseURL string `mapstructure:"link_base_url" validate:"required,url"`
}

// TaskConfig contains settings for background processing.
type TaskConfig struct {
	WorkerCount            int `mapstructure:"worker_count"             validate:"gte=1"`
	QueueSize              int `mapstructure:"queue_size"               validate:"gte=1"`
	CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes" validate:"gte=1"`
}
