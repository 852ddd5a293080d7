// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	TLS       TLSConfig
	SMTP      SMTPConfig
	API       APIConfig
	Reset     ResetConfig
	RateLimit RateLimitConfig
	Flash     FlashConfig
}

type TLSConfig struct {
	Mode     string // auto (manual when files are set), manual, off
	CertFile string // Path to certificate file (manual mode)
	KeyFile  string // Path to private key file (manual mode)
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int // in MB
	// TrustedProxies lists the CIDR ranges whose X-Forwarded-For is believed.
	// Empty means client addresses come from the connection only.
	TrustedProxies []string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

// SMTPConfig configures outgoing mail. An empty Host logs reset links instead of sending them.
type SMTPConfig struct { //nolint:govet // fieldalignment not critical
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

// APIConfig tells the recovery widgets where the account API lives.
type APIConfig struct {
	BaseURL string        // defaults to Server.BaseURL
	Timeout time.Duration // upper bound for a single API call
}

type ResetConfig struct { //nolint:govet // fieldalignment not critical
	TokenTTL         time.Duration
	MinPasswordScore int    // zxcvbn score 0-4
	CleanupSchedule  string // cron spec for purging expired tokens
}

type RateLimitConfig struct {
	Requests int           // requests allowed per window and client
	Window   time.Duration // 0 disables rate limiting
}

type FlashConfig struct {
	CookieName string
	HashKey    string // 32-byte hex string for HMAC signing
	BlockKey   string // 32-byte hex string for AES encryption (optional)
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:           cmd.String("host"),
			Port:           int(cmd.Int("port")),
			BaseURL:        cmd.String("base-url"),
			MaxBodySize:    int(cmd.Int("max-body-size")),
			TrustedProxies: cmd.StringSlice("trusted-proxies"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		TLS: TLSConfig{
			Mode:     cmd.String("tls-mode"),
			CertFile: cmd.String("tls-cert-file"),
			KeyFile:  cmd.String("tls-key-file"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		API: APIConfig{
			BaseURL: cmd.String("api-base-url"),
			Timeout: cmd.Duration("api-timeout"),
		},
		Reset: ResetConfig{
			TokenTTL:         cmd.Duration("reset-token-ttl"),
			MinPasswordScore: int(cmd.Int("reset-min-password-score")),
			CleanupSchedule:  cmd.String("reset-cleanup-schedule"),
		},
		RateLimit: RateLimitConfig{
			Requests: int(cmd.Int("rate-limit-requests")),
			Window:   cmd.Duration("rate-limit-window"),
		},
		Flash: FlashConfig{
			CookieName: cmd.String("flash-cookie-name"),
			HashKey:    cmd.String("flash-hash-key"),
			BlockKey:   cmd.String("flash-block-key"),
		},
	}

	applyDefaults(cfg)

	return cfg
}

// applyDefaults resolves values that depend on other settings.
func applyDefaults(cfg *Config) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}
	cfg.Server.BaseURL = strings.TrimSuffix(cfg.Server.BaseURL, "/")

	// The widgets talk to the API served by this process unless told otherwise
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = localAPIURL(cfg)
	}
	cfg.API.BaseURL = strings.TrimSuffix(cfg.API.BaseURL, "/")
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	scheme := "http"
	if UseTLS(cfg.TLS) {
		scheme = "https"
	}

	// Hide default ports in URL
	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}

// localAPIURL addresses this process directly on its listen address, so
// widget calls skip any reverse proxy. With TLS the certificate only matches
// the public name and the base URL is used instead.
func localAPIURL(cfg *Config) string {
	if UseTLS(cfg.TLS) {
		return cfg.Server.BaseURL
	}
	host := cfg.Server.Host
	switch host {
	case "", "localhost", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port))
}

// UseTLS reports whether the server terminates TLS itself.
func UseTLS(tls TLSConfig) bool {
	switch strings.ToLower(tls.Mode) {
	case "off":
		return false
	case "manual":
		return true
	default: // "auto" or empty
		return tls.CertFile != "" && tls.KeyFile != ""
	}
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	// Check for *.localhost subdomains (e.g., app.localhost)
	return strings.HasSuffix(host, ".localhost")
}

func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: cli.NewValueSourceChain(cli.EnvVar("HOST"), toml.TOML("server.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PORT"), toml.TOML("server.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application (used in reset links)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("server.base_url", configFile)),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: cli.NewValueSourceChain(cli.EnvVar("MAX_BODY_SIZE"), toml.TOML("server.max_body_size", configFile)),
		},
		&cli.StringSliceFlag{
			Name:    "trusted-proxies",
			Usage:   "CIDR ranges of reverse proxies whose X-Forwarded-For is trusted",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TRUSTED_PROXIES"), toml.TOML("server.trusted_proxies", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/app.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-mode",
			Value:   "auto",
			Usage:   "TLS mode (auto, manual, off)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_MODE"), toml.TOML("tls.mode", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-cert-file",
			Usage:   "Path to TLS certificate file",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_CERT_FILE"), toml.TOML("tls.cert_file", configFile)),
		},
		&cli.StringFlag{
			Name:    "tls-key-file",
			Usage:   "Path to TLS private key file",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TLS_KEY_FILE"), toml.TOML("tls.key_file", configFile)),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host (reset links are logged when empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Value:   "noreply@localhost",
			Usage:   "Sender address for reset mails",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "VibeFlow",
			Usage:   "Sender display name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_TLS"), toml.TOML("smtp.tls", configFile)),
		},
		// API flags
		&cli.StringFlag{
			Name:    "api-base-url",
			Usage:   "Base URL of the account API (defaults to this server on loopback)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("API_BASE_URL"), toml.TOML("api.base_url", configFile)),
		},
		&cli.DurationFlag{
			Name:    "api-timeout",
			Value:   15 * time.Second,
			Usage:   "Timeout for a single account API call",
			Sources: cli.NewValueSourceChain(cli.EnvVar("API_TIMEOUT"), toml.TOML("api.timeout", configFile)),
		},
		// Password reset flags
		&cli.DurationFlag{
			Name:    "reset-token-ttl",
			Value:   time.Hour,
			Usage:   "Validity of password reset tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RESET_TOKEN_TTL"), toml.TOML("reset.token_ttl", configFile)),
		},
		&cli.IntFlag{
			Name:    "reset-min-password-score",
			Value:   2,
			Usage:   "Minimum zxcvbn score (0-4) for new passwords",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RESET_MIN_PASSWORD_SCORE"), toml.TOML("reset.min_password_score", configFile)),
		},
		&cli.StringFlag{
			Name:    "reset-cleanup-schedule",
			Value:   "@hourly",
			Usage:   "Cron schedule for purging expired reset tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RESET_CLEANUP_SCHEDULE"), toml.TOML("reset.cleanup_schedule", configFile)),
		},
		// Rate limit flags
		&cli.IntFlag{
			Name:    "rate-limit-requests",
			Value:   10,
			Usage:   "Account API requests allowed per window and client",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RATE_LIMIT_REQUESTS"), toml.TOML("rate_limit.requests", configFile)),
		},
		&cli.DurationFlag{
			Name:    "rate-limit-window",
			Value:   time.Minute,
			Usage:   "Rate limit window (0 disables)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("RATE_LIMIT_WINDOW"), toml.TOML("rate_limit.window", configFile)),
		},
		// Flash cookie flags
		&cli.StringFlag{
			Name:    "flash-cookie-name",
			Value:   "_flash",
			Usage:   "Flash notification cookie name",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FLASH_COOKIE_NAME"), toml.TOML("flash.cookie_name", configFile)),
		},
		&cli.StringFlag{
			Name:    "flash-hash-key",
			Usage:   "Flash cookie hash key (32-byte hex, auto-generated if empty)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FLASH_HASH_KEY"), toml.TOML("flash.hash_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "flash-block-key",
			Usage:   "Flash cookie block key for encryption (32-byte hex, optional)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("FLASH_BLOCK_KEY"), toml.TOML("flash.block_key", configFile)),
		},
	}
}
