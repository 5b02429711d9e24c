// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultPath is used when no config path is passed to Load.
const DefaultPath = "./config.yaml"

type Server struct {
	ListenAddress  string   `yaml:"listenAddress"`
	TLSCertFile    string   `yaml:"tlsCertFile"`
	TLSKeyFile     string   `yaml:"tlsKeyFile"`
	TrustedProxies []string `yaml:"trustedProxies"`
	// Timeouts are Go duration strings ("30s"); empty means the built-in default.
	ReadTimeout     string `yaml:"readTimeout"`
	WriteTimeout    string `yaml:"writeTimeout"`
	IdleTimeout     string `yaml:"idleTimeout"`
	ShutdownTimeout string `yaml:"shutdownTimeout"`
}

type AuthorizationServer struct {
	URL                  string `yaml:"url"`
	JWKSEndpoint         string `yaml:"jwksEndpoint"`
	CertificateAuthority string `yaml:"certificateAuthority"`
	InsecureSkipVerify   bool   `yaml:"insecureSkipVerify"`
}

// Authorization controls how token claims become identity properties.
type Authorization struct {
	// PropertiesClaim names the token claim carrying properties directly.
	PropertiesClaim string `yaml:"propertiesClaim"`
	// GroupProperties grants properties to members of a group claim value.
	GroupProperties map[string][]string `yaml:"groupProperties"`
}

type Store struct {
	// Driver is "sqlite" or "memory".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type Kafka struct {
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	BatchSize int      `yaml:"batchSize"`
	Async     bool     `yaml:"async"`
}

type Audit struct {
	Enabled    bool  `yaml:"enabled"`
	BufferSize int   `yaml:"bufferSize"`
	Kafka      Kafka `yaml:"kafka"`
}

type MailQueue struct {
	Size int `yaml:"size"`
}

type Config struct {
	Server              Server              `yaml:"server"`
	AuthorizationServer AuthorizationServer `yaml:"authorizationServer"`
	Authorization       Authorization       `yaml:"authorization"`
	Store               Store               `yaml:"store"`
	Audit               Audit               `yaml:"audit"`
	MailQueue           MailQueue           `yaml:"mailQueue"`
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8080"
	}
	if c.AuthorizationServer.JWKSEndpoint == "" {
		c.AuthorizationServer.JWKSEndpoint = ".well-known/jwks.json"
	}
	if c.Authorization.PropertiesClaim == "" {
		c.Authorization.PropertiesClaim = "properties"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.DSN == "" && c.Store.Driver == "sqlite" {
		c.Store.DSN = "notifications.db"
	}
	if c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = 1000
	}
	if c.MailQueue.Size <= 0 {
		c.MailQueue.Size = 100
	}
}

// Load loads the service configuration from a file path.
// If configPath is empty, defaults to DefaultPath.
func Load(configPath ...string) (Config, Tree, error) {
	path := DefaultPath
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, nil, fmt.Errorf("trying to open config file %s: %w", path, err)
	}
	cfg, tree, err := Parse(content)
	if err != nil {
		return Config{}, nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, tree, nil
}

// Parse decodes a YAML document into the typed Config and the lookup Tree.
func Parse(content []byte) (Config, Tree, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, nil, fmt.Errorf("error unmarshaling YAML: %w", err)
	}
	cfg.applyDefaults()

	tree, err := parseTree(content)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, tree, nil
}

// ParseDurationOrDefault parses a Go duration string, falling back to def when
// the value is empty, malformed or not positive.
func ParseDurationOrDefault(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
