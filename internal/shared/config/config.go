package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Membership MembershipConfig `mapstructure:"membership"`
	Mail       MailConfig       `mapstructure:"mail"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, sqlite
	Path            string        `mapstructure:"path"`   // sqlite file
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the postgres connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
// An empty address disables Redis.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IdentityConfig holds identity token verification settings.
type IdentityConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"`
	Issuer     string `mapstructure:"issuer"`
	TrackLogin bool   `mapstructure:"track_login"`
}

// MembershipConfig holds account membership settings.
type MembershipConfig struct {
	Salt              string `mapstructure:"salt"`
	InviteExpireHours int    `mapstructure:"invite_expire_hours"`
	MaxRosterRetries  int    `mapstructure:"max_roster_retries"`
	InviteURL         string `mapstructure:"invite_url"`
	SiteName          string `mapstructure:"site_name"`
	InviteRateLimit   int    `mapstructure:"invite_rate_limit"`
}

// InviteExpiry returns the invite validity window.
func (c *MembershipConfig) InviteExpiry() time.Duration {
	return time.Duration(c.InviteExpireHours) * time.Hour
}

// MailConfig holds outbound mail settings.
// An empty host disables delivery.
type MailConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	SSL             bool          `mapstructure:"ssl"`
	AuthType        string        `mapstructure:"auth_type"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	From            string        `mapstructure:"from"`
	TemplateFormat  string        `mapstructure:"template_format"` // html, text
	Subject         string        `mapstructure:"subject"`
	Body            string        `mapstructure:"body"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/roster")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No file, defaults and env only
	}

	v.SetEnvPrefix("ROSTER")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides reads secrets that should never live in the config file.
func applyEnvOverrides(cfg *Config) {
	if salt := os.Getenv("ROSTER_SALT"); salt != "" {
		cfg.Membership.Salt = salt
	}
	if secret := os.Getenv("ROSTER_JWT_SECRET"); secret != "" {
		cfg.Identity.JWTSecret = secret
	}
	if password := os.Getenv("ROSTER_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("ROSTER_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if password := os.Getenv("ROSTER_MAIL_PASSWORD"); password != "" {
		cfg.Mail.Password = password
	}
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Membership.Salt == "" {
		return errors.New("membership.salt is required")
	}
	if c.Identity.JWTSecret == "" {
		return errors.New("identity.jwt_secret is required")
	}
	if c.Membership.InviteExpireHours <= 0 {
		return fmt.Errorf("membership.invite_expire_hours must be positive, got %d", c.Membership.InviteExpireHours)
	}
	if c.Membership.MaxRosterRetries <= 0 {
		return fmt.Errorf("membership.max_roster_retries must be positive, got %d", c.Membership.MaxRosterRetries)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Mail.TemplateFormat {
	case "html", "text":
	default:
		return fmt.Errorf("unsupported mail.template_format %q", c.Mail.TemplateFormat)
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.allow_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.path", "roster.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "roster")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)

	// Identity defaults
	v.SetDefault("identity.issuer", "")
	v.SetDefault("identity.track_login", true)

	// Membership defaults
	v.SetDefault("membership.invite_expire_hours", 72)
	v.SetDefault("membership.max_roster_retries", 5)
	v.SetDefault("membership.invite_url", "http://localhost:8080/invites")
	v.SetDefault("membership.site_name", "Roster")
	v.SetDefault("membership.invite_rate_limit", 20)

	// Mail defaults
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.template_format", "html")
	v.SetDefault("mail.breaker_failures", 5)
	v.SetDefault("mail.breaker_timeout", 60*time.Second)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "roster")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
