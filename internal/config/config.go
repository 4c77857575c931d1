package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress              string
	DatabaseURI             string
	TokenSecret             string
	DefaultCurrency         string
	PaymentProcessorAddress string
	HeartbeatInterval       time.Duration
	PresencePoll            time.Duration
	StalenessWindow         time.Duration
	AbandonWindow           time.Duration
	MonitorBatch            int
	ShutdownTimeout         time.Duration
}

const (
	defaultRunAddress        = ":8080"
	defaultTokenSecret       = "change-me-in-production"
	defaultCurrency          = "USD"
	defaultHeartbeatInterval = 30 * time.Second
	defaultPresencePoll      = 3 * time.Second
	defaultAbandonWindow     = 15 * time.Minute
	defaultMonitorBatch      = 32
	defaultShutdownTimeout   = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:              getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:             getString(lookup, "DATABASE_URI", ""),
		TokenSecret:             getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		DefaultCurrency:         getString(lookup, "DEFAULT_CURRENCY", defaultCurrency),
		PaymentProcessorAddress: getString(lookup, "PAYMENT_PROCESSOR_ADDRESS", ""),
		HeartbeatInterval:       getDuration(lookup, "HEARTBEAT_INTERVAL", defaultHeartbeatInterval),
		PresencePoll:            getDuration(lookup, "PRESENCE_POLL_INTERVAL", defaultPresencePoll),
		StalenessWindow:         getDuration(lookup, "STALENESS_WINDOW", 0),
		AbandonWindow:           getDuration(lookup, "ABANDON_WINDOW", defaultAbandonWindow),
		MonitorBatch:            getInt(lookup, "MONITOR_BATCH_SIZE", defaultMonitorBatch),
		ShutdownTimeout:         getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("craftdeal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		heartbeatStr = cfg.HeartbeatInterval.String()
		pollStr      = cfg.PresencePoll.String()
		shutdownStr  = cfg.ShutdownTimeout.String()
		abandonStr   = cfg.AbandonWindow.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.DefaultCurrency, "currency", cfg.DefaultCurrency, "Currency for new orders")
	fs.StringVar(&cfg.PaymentProcessorAddress, "payment-address", cfg.PaymentProcessorAddress, "Payment processor base URL")
	fs.StringVar(&heartbeatStr, "heartbeat-interval", heartbeatStr, "Expected dispute presence heartbeat interval")
	fs.StringVar(&pollStr, "presence-poll", pollStr, "Interval between presence monitor scans")
	fs.StringVar(&abandonStr, "abandon-window", abandonStr, "Age after which a never-activated dispute counts as abandoned")
	fs.IntVar(&cfg.MonitorBatch, "monitor-batch", cfg.MonitorBatch, "Maximum disputes per monitor scan")
	fs.StringVar(&shutdownStr, "shutdown-timeout", shutdownStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.HeartbeatInterval, err = time.ParseDuration(heartbeatStr); err != nil {
		return nil, fmt.Errorf("invalid heartbeat interval: %w", err)
	}
	if cfg.PresencePoll, err = time.ParseDuration(pollStr); err != nil {
		return nil, fmt.Errorf("invalid presence poll interval: %w", err)
	}
	if cfg.AbandonWindow, err = time.ParseDuration(abandonStr); err != nil {
		return nil, fmt.Errorf("invalid abandon window: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = string(content)
	}

	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	if cfg.PresencePoll <= 0 {
		cfg.PresencePoll = defaultPresencePoll
	}
	// One missed heartbeat must not flap presence.
	if cfg.StalenessWindow < 2*cfg.HeartbeatInterval {
		cfg.StalenessWindow = 2 * cfg.HeartbeatInterval
	}
	if cfg.AbandonWindow <= 0 {
		cfg.AbandonWindow = defaultAbandonWindow
	}
	if cfg.MonitorBatch <= 0 {
		cfg.MonitorBatch = defaultMonitorBatch
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
