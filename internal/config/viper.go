// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported statement encodings
const (
	EncodingCP1257 = "cp1257"
	EncodingUTF8   = "utf-8"
)

// LogConfig controls verbosity and format of log lines.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DataConfig locates the statement files to import.
type DataConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Pattern   string `mapstructure:"pattern" yaml:"pattern"`
}

// StatementConfig describes the framing of the bank export.
type StatementConfig struct {
	HeaderRows int    `mapstructure:"header_rows" yaml:"header_rows"`
	FooterRows int    `mapstructure:"footer_rows" yaml:"footer_rows"`
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	Encoding   string `mapstructure:"encoding" yaml:"encoding"`
}

// CategoriesConfig points at the keyword tables.
type CategoriesConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// DatabaseConfig holds the connection parameters of the transaction store.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Name     string `mapstructure:"name" yaml:"name"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"-"` // Never serialize the password
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
	Path     string `mapstructure:"path" yaml:"path"`
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, quoteDSNValue(d.Password), d.Name, d.SSLMode)
}

// Redacted returns a loggable description of the connection.
func (d DatabaseConfig) Redacted() string {
	if d.Driver == DriverSQLite {
		return "sqlite://" + d.Path
	}
	u := url.URL{
		Scheme: d.Driver,
		User:   url.User(d.User),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	return u.String()
}

// APIConfig configures the read-only report server.
type APIConfig struct {
	Address        string   `mapstructure:"address" yaml:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// WatchConfig configures the directory watcher.
type WatchConfig struct {
	DebounceMillis int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Data       DataConfig       `mapstructure:"data" yaml:"data"`
	Statement  StatementConfig  `mapstructure:"statement" yaml:"statement"`
	Categories CategoriesConfig `mapstructure:"categories" yaml:"categories"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	API        APIConfig        `mapstructure:"api" yaml:"api"`
	Watch      WatchConfig      `mapstructure:"watch" yaml:"watch"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then the config file, then environment variables.
// An explicit configFile must exist; otherwise the standard locations are searched.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.ledger-import")
		v.AddConfigPath(".ledger-import")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 5. Unprefixed variables kept from the original deployment
	for key, envs := range map[string][]string{
		"log.level":         {"LEDGER_LOG_LEVEL", "LOG_LEVEL"},
		"log.format":        {"LEDGER_LOG_FORMAT", "LOG_FORMAT"},
		"database.password": {"LEDGER_DATABASE_PASSWORD", "PSQL_PASSWORD"},
	} {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.directory", "./data")
	v.SetDefault("data.pattern", "*.csv")

	v.SetDefault("statement.header_rows", 3)
	v.SetDefault("statement.footer_rows", 5)
	v.SetDefault("statement.delimiter", "|")
	v.SetDefault("statement.encoding", EncodingCP1257)

	v.SetDefault("categories.file", "categories.yaml")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "aria")
	v.SetDefault("database.user", "finance_user")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "ledger.db")

	v.SetDefault("api.address", ":8080")
	v.SetDefault("api.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("watch.debounce_ms", 500)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Unknown log levels fall back to info, like the original LOG_LEVEL handling.
	format := strings.ToLower(config.Log.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Data.Pattern == "" {
		return fmt.Errorf("data.pattern must not be empty")
	}

	if len([]rune(config.Statement.Delimiter)) != 1 {
		return fmt.Errorf("statement delimiter must be a single character, got: %q", config.Statement.Delimiter)
	}
	if config.Statement.HeaderRows < 0 || config.Statement.FooterRows < 0 {
		return fmt.Errorf("statement header_rows and footer_rows must not be negative")
	}
	switch strings.ToLower(config.Statement.Encoding) {
	case EncodingCP1257, EncodingUTF8:
	default:
		return fmt.Errorf("unsupported statement encoding: %s", config.Statement.Encoding)
	}

	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Port < 1 || config.Database.Port > 65535 {
			return fmt.Errorf("database.port must be between 1 and 65535, got: %d", config.Database.Port)
		}
	case DriverSQLite:
		if config.Database.Path == "" {
			return fmt.Errorf("database.path required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}

	if config.Watch.DebounceMillis < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got: %d", config.Watch.DebounceMillis)
	}

	return nil
}

// quoteDSNValue quotes a libpq key/value parameter when needed.
func quoteDSNValue(s string) string {
	if s != "" && !strings.ContainsAny(s, ` '\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
