// Package config provides centralized configuration management for regcat.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/regdef/internal/registers"
)

// Config holds all application configuration.
// All settings can be configured via environment variables; command-line
// flags override them.
type Config struct {
	Logging  LoggingConfig
	Reader   ReaderConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ReaderConfig holds register file parsing settings.
type ReaderConfig struct {
	// Lang is the preferred description locale (default: en_US)
	Lang string `env:"REGCAT_LANG" default:"en_US"`

	// Delimiter is the CSV field delimiter, a single character (default: ",")
	Delimiter string `env:"CSV_DELIMITER" default:","`

	// Comment starts an ignored line when set; a single character (default: none)
	Comment string `env:"CSV_COMMENT"`

	// LazyQuotes accepts quotes inside unquoted fields (default: false)
	LazyQuotes bool `env:"CSV_LAZY_QUOTES" default:"false"`

	// TrimLeadingSpace ignores leading white space in fields (default: false)
	TrimLeadingSpace bool `env:"CSV_TRIM_LEADING_SPACE" default:"false"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodySize caps compile request bodies in bytes (default: 10MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"10485760"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Persistence is disabled when empty.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Dialect returns the CSV dialect described by the reader settings.
// Call it on a validated config; invalid runes are ignored.
func (c *ReaderConfig) Dialect() registers.Dialect {
	return registers.Dialect{
		Comma:            singleRune(c.Delimiter),
		Comment:          singleRune(c.Comment),
		LazyQuotes:       c.LazyQuotes,
		TrimLeadingSpace: c.TrimLeadingSpace,
	}
}

// singleRune returns the only rune of s, or 0 when s is not exactly one rune.
func singleRune(s string) rune {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0
	}
	return r
}
