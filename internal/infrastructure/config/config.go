package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Log         LogConfig
	Usage       UsageConfig
	EmailDomain EmailDomainConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// UsageConfig holds usage tracking settings
type UsageConfig struct {
	DefaultQuota int64 // per team per billing period, 0 = unlimited
}

// EmailDomainConfig holds sender domain verification settings
type EmailDomainConfig struct {
	Resolver           string        // DNS server used for TXT lookups, host:port
	LookupTimeout      time.Duration // per lookup
	VerificationPrefix string        // label prepended to the domain for the TXT record
	Recheck            bool          // periodically re-verify pending domains
	RecheckInterval    time.Duration
	RecheckWorkers     int
	RecheckBatchSize   int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with DEALFLOW_ prefix (e.g., DEALFLOW_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("DEALFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Usage: UsageConfig{
			DefaultQuota: v.GetInt64("usage.default_quota"),
		},
		EmailDomain: EmailDomainConfig{
			Resolver:           v.GetString("email_domain.resolver"),
			LookupTimeout:      v.GetDuration("email_domain.lookup_timeout"),
			VerificationPrefix: v.GetString("email_domain.verification_prefix"),
			Recheck:            v.GetBool("email_domain.recheck"),
			RecheckInterval:    v.GetDuration("email_domain.recheck_interval"),
			RecheckWorkers:     v.GetInt("email_domain.recheck_workers"),
			RecheckBatchSize:   v.GetInt("email_domain.recheck_batch_size"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "dealflow-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "dealflow"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.EmailDomain.Resolver == "" {
		cfg.EmailDomain.Resolver = "1.1.1.1:53"
	}
	if cfg.EmailDomain.LookupTimeout == 0 {
		cfg.EmailDomain.LookupTimeout = 5 * time.Second
	}
	if cfg.EmailDomain.VerificationPrefix == "" {
		cfg.EmailDomain.VerificationPrefix = "_dealflow"
	}
	if cfg.EmailDomain.RecheckInterval == 0 {
		cfg.EmailDomain.RecheckInterval = 15 * time.Minute
	}
	if cfg.EmailDomain.RecheckWorkers == 0 {
		cfg.EmailDomain.RecheckWorkers = 2
	}
	if cfg.EmailDomain.RecheckBatchSize == 0 {
		cfg.EmailDomain.RecheckBatchSize = 100
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Usage.DefaultQuota < 0 {
		return fmt.Errorf("usage.default_quota cannot be negative")
	}
	if c.EmailDomain.LookupTimeout < 0 {
		return fmt.Errorf("email_domain.lookup_timeout cannot be negative")
	}
	if c.EmailDomain.RecheckInterval < 0 || c.EmailDomain.RecheckWorkers < 0 || c.EmailDomain.RecheckBatchSize < 0 {
		return fmt.Errorf("email_domain recheck settings cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
