package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultAddr is the default TCP address the viewer server listens on.
	DefaultAddr = ":8390"
	// DefaultTurnInterval controls how often the next turn state is broadcast.
	DefaultTurnInterval = 2 * time.Second
	// DefaultPingInterval controls the keepalive cadence for WebSocket connections.
	DefaultPingInterval = 30 * time.Second
	// DefaultMaxPayloadBytes limits inbound WebSocket frame size.
	DefaultMaxPayloadBytes int64 = 1 << 20
	// DefaultMaxClients bounds concurrent WebSocket connections. Zero disables the limit.
	DefaultMaxClients = 256

	// DefaultBundleRetain limits how many exported bundles are kept on disk.
	DefaultBundleRetain = 24
	// DefaultBundleMaxAge controls how long exported bundles are kept on disk.
	DefaultBundleMaxAge = 7 * 24 * time.Hour

	// DefaultLogLevel controls verbosity for engine logs.
	DefaultLogLevel = "info"
	// DefaultLogPath is where structured logs are written.
	DefaultLogPath = "engine.log"
	// DefaultLogMaxSizeMB caps the size of a single log file before rotation.
	DefaultLogMaxSizeMB = 100
	// DefaultLogMaxBackups limits retained rotated log files.
	DefaultLogMaxBackups = 10
	// DefaultLogMaxAgeDays controls how long rotated log files are kept on disk.
	DefaultLogMaxAgeDays = 7
	// DefaultLogCompress toggles gzip compression for rotated log files.
	DefaultLogCompress = true
)

// Config captures all runtime tunables for the replay viewer service.
type Config struct {
	Address         string
	ReplayPath      string
	AllowedOrigins  []string
	TurnInterval    time.Duration
	PingInterval    time.Duration
	MaxPayloadBytes int64
	MaxClients      int
	CatalogDir      string
	BundleDir       string
	BundleRetain    int
	BundleMaxAge    time.Duration
	AdminToken      string
	Logging         LoggingConfig
}

// LoggingConfig captures structured logging configuration options.
type LoggingConfig struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads the viewer configuration from environment variables, applying sane defaults
// and returning descriptive errors for invalid overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Address:         getString("AWBRN_ADDR", DefaultAddr),
		ReplayPath:      strings.TrimSpace(os.Getenv("AWBRN_REPLAY")),
		AllowedOrigins:  parseList(os.Getenv("AWBRN_ALLOWED_ORIGINS")),
		TurnInterval:    DefaultTurnInterval,
		PingInterval:    DefaultPingInterval,
		MaxPayloadBytes: DefaultMaxPayloadBytes,
		MaxClients:      DefaultMaxClients,
		CatalogDir:      strings.TrimSpace(os.Getenv("AWBRN_CATALOG_DIR")),
		BundleDir:       strings.TrimSpace(os.Getenv("AWBRN_BUNDLE_DIR")),
		BundleRetain:    DefaultBundleRetain,
		BundleMaxAge:    DefaultBundleMaxAge,
		AdminToken:      strings.TrimSpace(os.Getenv("AWBRN_ADMIN_TOKEN")),
		Logging: LoggingConfig{
			Level:      strings.TrimSpace(getString("AWBRN_LOG_LEVEL", DefaultLogLevel)),
			Path:       strings.TrimSpace(getString("AWBRN_LOG_PATH", DefaultLogPath)),
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
			Compress:   DefaultLogCompress,
		},
	}

	var problems []string

	if cfg.ReplayPath == "" {
		problems = append(problems, "AWBRN_REPLAY must point at a replay archive")
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_TURN_INTERVAL")); raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil || duration <= 0 {
			problems = append(problems, fmt.Sprintf("AWBRN_TURN_INTERVAL must be a positive duration, got %q", raw))
		} else {
			cfg.TurnInterval = duration
		}
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_PING_INTERVAL")); raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil || duration <= 0 {
			problems = append(problems, fmt.Sprintf("AWBRN_PING_INTERVAL must be a positive duration, got %q", raw))
		} else {
			cfg.PingInterval = duration
		}
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_MAX_PAYLOAD_BYTES")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("AWBRN_MAX_PAYLOAD_BYTES must be a positive integer, got %q", raw))
		} else {
			cfg.MaxPayloadBytes = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_MAX_CLIENTS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("AWBRN_MAX_CLIENTS must be a non-negative integer, got %q", raw))
		} else {
			cfg.MaxClients = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_BUNDLE_RETAIN")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("AWBRN_BUNDLE_RETAIN must be a non-negative integer, got %q", raw))
		} else {
			cfg.BundleRetain = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_BUNDLE_MAX_AGE")); raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil || duration < 0 {
			problems = append(problems, fmt.Sprintf("AWBRN_BUNDLE_MAX_AGE must be a non-negative duration, got %q", raw))
		} else {
			cfg.BundleMaxAge = duration
		}
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_LOG_MAX_SIZE_MB")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("AWBRN_LOG_MAX_SIZE_MB must be a positive integer, got %q", raw))
		} else {
			cfg.Logging.MaxSizeMB = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_LOG_MAX_BACKUPS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("AWBRN_LOG_MAX_BACKUPS must be a non-negative integer, got %q", raw))
		} else {
			cfg.Logging.MaxBackups = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_LOG_MAX_AGE_DAYS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("AWBRN_LOG_MAX_AGE_DAYS must be a non-negative integer, got %q", raw))
		} else {
			cfg.Logging.MaxAgeDays = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("AWBRN_LOG_COMPRESS")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("AWBRN_LOG_COMPRESS must be a boolean value, got %q", raw))
		} else {
			cfg.Logging.Compress = value
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			values = append(values, item)
		}
	}
	return values
}
