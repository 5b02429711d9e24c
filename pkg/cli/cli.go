// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/config"
)

const (
	DefaultPurgeTimeout       = 30 * time.Second
	DefaultDedupSweepInterval = 10 * time.Minute
)

type Config struct {
	// Application flags
	Debug bool

	// Metrics server flags
	MetricsAddr string

	// Configuration flags
	ConfigPath  string
	WatchConfig bool

	// Startup and housekeeping
	PurgeTimeout       string
	DedupSweepInterval string

	// Development switches
	DisableAuth  bool
	DisableEmail bool
}

// Parse reads the process flags. Every flag falls back to an environment
// variable before its built-in default.
func Parse() *Config {
	cfg, err := ParseArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		// flag.ExitOnError already exited for CommandLine.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

// ParseArgs registers the flags on fs and parses args.
func ParseArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	config := &Config{}
	fs.BoolVar(&config.Debug, "debug", getEnvBool("NOTIFICATION_DEBUG", false), "Enable debug level logging")

	fs.StringVar(&config.MetricsAddr, "metrics-bind-address", getEnvString("METRICS_BIND_ADDRESS", "0.0.0.0:8081"),
		"The address the metrics endpoint binds to, or 0 to disable the metrics listener")

	fs.StringVar(&config.ConfigPath, "config-path", getEnvString("NOTIFICATION_CONFIG_PATH", "./config.yaml"),
		"Path to the notification service configuration file")
	fs.BoolVar(&config.WatchConfig, "watch-config", getEnvBool("NOTIFICATION_WATCH_CONFIG", true),
		"Reload the configuration file when it changes")

	fs.StringVar(&config.PurgeTimeout, "purge-timeout", getEnvString("NOTIFICATION_PURGE_TIMEOUT", DefaultPurgeTimeout.String()),
		"Upper bound for purging expired notifications at startup (e.g., '30s')")
	fs.StringVar(&config.DedupSweepInterval, "dedup-sweep-interval", getEnvString("NOTIFICATION_DEDUP_SWEEP_INTERVAL", DefaultDedupSweepInterval.String()),
		"Interval for evicting expired entries from the mail deduplication cache (e.g., '10m')")

	fs.BoolVar(&config.DisableAuth, "disable-auth", getEnvBool("NOTIFICATION_DISABLE_AUTH", false),
		"Accept every request as a privileged developer identity. Never use in production")
	fs.BoolVar(&config.DisableEmail, "disable-email", getEnvBool("NOTIFICATION_DISABLE_EMAIL", false),
		"Do not mail notifications added with deferToMail")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Print(log *zap.SugaredLogger) {
	log.Infow("CLI Configuration",
		"debug", c.Debug,
		"metrics_bind_address", c.MetricsAddr,
		"config_path", c.ConfigPath,
		"watch_config", c.WatchConfig,
		"purge_timeout", c.PurgeTimeout,
		"dedup_sweep_interval", c.DedupSweepInterval,
		"disable_auth", c.DisableAuth,
		"disable_email", c.DisableEmail,
	)
}

// MetricsEnabled reports whether a metrics listener should be started.
func (c *Config) MetricsEnabled() bool {
	return c.MetricsAddr != "" && c.MetricsAddr != "0"
}

func ParsePurgeTimeout(value string, log *zap.SugaredLogger) time.Duration {
	d, err := parseDuration("purge-timeout", value, DefaultPurgeTimeout)
	if err != nil {
		log.Warn(err)
	}
	return d
}

func ParseDedupSweepInterval(value string, log *zap.SugaredLogger) time.Duration {
	d, err := parseDuration("dedup-sweep-interval", value, DefaultDedupSweepInterval)
	if err != nil {
		log.Warn(err)
	}
	return d
}

func parseDuration(name, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	if d := config.ParseDurationOrDefault(value, 0); d > 0 {
		return d, nil
	}
	return def, fmt.Errorf("invalid %s %q; using default %s", name, value, def.String())
}

// getEnvString returns the value of an environment variable, or the provided default if not set.
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the provided default if not set.
// Valid true values are "true", "1", "yes" (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
