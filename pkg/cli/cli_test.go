// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("notification", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestGetEnvString(t *testing.T) {
	t.Setenv("NOTIFICATION_TEST_ENV", "custom-value")

	if got := getEnvString("NOTIFICATION_TEST_ENV", "default"); got != "custom-value" {
		t.Fatalf("expected env override, got %s", got)
	}

	if got := getEnvString("NOTIFICATION_UNKNOWN_ENV", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("NOTIFICATION_BOOL_TRUE", "true")
	if !getEnvBool("NOTIFICATION_BOOL_TRUE", false) {
		t.Fatal("expected true when env variable explicitly true")
	}

	t.Setenv("NOTIFICATION_BOOL_FALSE", "false")
	if getEnvBool("NOTIFICATION_BOOL_FALSE", true) {
		t.Fatal("expected false when env variable explicitly false")
	}

	t.Setenv("NOTIFICATION_BOOL_INVALID", "sometimes")
	if !getEnvBool("NOTIFICATION_BOOL_INVALID", true) {
		t.Fatal("expected fallback default when env value invalid")
	}

	if getEnvBool("NOTIFICATION_BOOL_MISSING", false) {
		t.Fatal("expected default false when env missing")
	}
}

func TestGetEnvBool_AllVariants(t *testing.T) {
	for _, val := range []string{"true", "TRUE", "True", "1", "yes", "YES"} {
		t.Run(val, func(t *testing.T) {
			t.Setenv("TEST_BOOL", val)
			assert.True(t, getEnvBool("TEST_BOOL", false))
		})
	}
	for _, val := range []string{"false", "FALSE", "0", "no", "NO"} {
		t.Run(val, func(t *testing.T) {
			t.Setenv("TEST_BOOL", val)
			assert.False(t, getEnvBool("TEST_BOOL", true))
		})
	}
}

func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := ParseArgs(newFlagSet(), nil)
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "./config.yaml", cfg.ConfigPath)
	assert.Equal(t, "0.0.0.0:8081", cfg.MetricsAddr)
	assert.True(t, cfg.WatchConfig)
	assert.Equal(t, "30s", cfg.PurgeTimeout)
	assert.Equal(t, "10m0s", cfg.DedupSweepInterval)
	assert.False(t, cfg.DisableAuth)
	assert.False(t, cfg.DisableEmail)
	assert.True(t, cfg.MetricsEnabled())
}

func TestParseArgs_EnvironmentFallback(t *testing.T) {
	t.Setenv("NOTIFICATION_CONFIG_PATH", "/etc/notification/config.yaml")
	t.Setenv("NOTIFICATION_DISABLE_AUTH", "yes")
	t.Setenv("METRICS_BIND_ADDRESS", "0")

	cfg, err := ParseArgs(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, "/etc/notification/config.yaml", cfg.ConfigPath)
	assert.True(t, cfg.DisableAuth)
	assert.False(t, cfg.MetricsEnabled())
}

func TestParseArgs_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("NOTIFICATION_CONFIG_PATH", "/from/env.yaml")

	cfg, err := ParseArgs(newFlagSet(), []string{
		"--config-path=/from/flag.yaml",
		"--debug",
		"--purge-timeout=5s",
		"--dedup-sweep-interval=1m",
		"--disable-email",
		"--watch-config=false",
	})
	require.NoError(t, err)

	assert.Equal(t, "/from/flag.yaml", cfg.ConfigPath)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "5s", cfg.PurgeTimeout)
	assert.Equal(t, "1m", cfg.DedupSweepInterval)
	assert.True(t, cfg.DisableEmail)
	assert.False(t, cfg.WatchConfig)
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	_, err := ParseArgs(newFlagSet(), []string{"--leader-elect"})
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{name: "empty uses default", value: "", want: time.Minute},
		{name: "valid", value: "45s", want: 45 * time.Second},
		{name: "invalid", value: "soon", want: time.Minute, wantErr: true},
		{name: "zero", value: "0s", want: time.Minute, wantErr: true},
		{name: "negative", value: "-5s", want: time.Minute, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDuration("interval", tt.value, time.Minute)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParsePurgeTimeout(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	assert.Equal(t, 2*time.Minute, ParsePurgeTimeout("2m", log))
	assert.Equal(t, DefaultPurgeTimeout, ParsePurgeTimeout("bogus", log))
}

func TestParseDedupSweepInterval(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	assert.Equal(t, 30*time.Second, ParseDedupSweepInterval("30s", log))
	assert.Equal(t, DefaultDedupSweepInterval, ParseDedupSweepInterval("", log))
}

func TestConfig_Print(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	config := &Config{
		Debug:              true,
		MetricsAddr:        ":8081",
		ConfigPath:         "./config.yaml",
		WatchConfig:        true,
		PurgeTimeout:       "30s",
		DedupSweepInterval: "10m",
	}
	assert.NotPanics(t, func() { config.Print(logger) })
}
