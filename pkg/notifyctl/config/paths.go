// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "notifyctl"
	defaultConfigFile    = "config.yaml"
)

// DefaultConfigPath honours NOTIFYCTL_CONFIG, then the user config dir.
func DefaultConfigPath() string {
	if env := os.Getenv("NOTIFYCTL_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".notifyctl", defaultConfigFile)
}
