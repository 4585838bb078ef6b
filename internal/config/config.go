package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
	Mail    MailConfig    `mapstructure:"mail"`
	CDN     CDNConfig     `mapstructure:"cdn"`
	Markup  MarkupConfig  `mapstructure:"markup"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port string    `mapstructure:"port"`
	TLS  TLSConfig `mapstructure:"tls"`
	// SiteURL is the public origin of the site, without a trailing slash.
	SiteURL string `mapstructure:"site_url"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig holds the fragment cache configuration.
type CacheConfig struct {
	FilePath string        `mapstructure:"file_path"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	Lifetime  int    `mapstructure:"lifetime"` // hours
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// MailConfig holds the SMTP transport and notification addresses.
type MailConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	TLS         bool     `mapstructure:"tls"`
	DefaultFrom string   `mapstructure:"default_from"`
	NotifyTo    []string `mapstructure:"notify_to"`
}

// CDNConfig holds the edge cache purge settings. Purging is disabled when APIKey is empty.
type CDNConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MarkupConfig holds content rendering settings.
type MarkupConfig struct {
	DefaultType string `mapstructure:"default_type"`
}

// AuthConfig lists the session subjects granted the editor role at startup.
type AuthConfig struct {
	Editors []string `mapstructure:"editors"`
}

// DefaultNotifyTo lists the maintainers who receive new submission emails.
var DefaultNotifyTo = []string{"ewa@python.org", "berker.peksag@gmail.com"}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.site_url", "https://www.python.org")
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "stories:stories@tcp(localhost:3306)/stories?parseTime=true")
	v.SetDefault("cache.file_path", "cache.db")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("session.lifetime", 24)
	v.SetDefault("session.secret_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", 25)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.tls", false)
	v.SetDefault("mail.default_from", "webmaster@localhost")
	v.SetDefault("mail.notify_to", DefaultNotifyTo)
	v.SetDefault("cdn.api_key", "")
	v.SetDefault("cdn.timeout", "5s")
	v.SetDefault("markup.default_type", "markdown")
	v.SetDefault("auth.editors", []string{})

	// Set up viper to read from config file
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/success-stories/")
	v.AddConfigPath("$HOME/.success-stories")

	// Attempt to read the config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	// Set up viper to read from environment variables
	v.SetEnvPrefix("STORIES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
