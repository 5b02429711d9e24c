// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/telekom/notification-service/pkg/config"
)

// ServiceSection is the configuration section holding the SMTP block.
const ServiceSection = "Services/Notification"

const defaultSMTPPort = 25

// SMTPSettings is the resolved <section>/SMTP configuration.
type SMTPSettings struct {
	Host        string
	Port        int
	Login       string
	Password    string
	Protocol    string
	FromAddress string
}

// ImplicitTLS reports whether the protocol asks for TLS from the first byte
// instead of STARTTLS.
func (s SMTPSettings) ImplicitTLS() bool {
	switch strings.ToLower(strings.TrimSpace(s.Protocol)) {
	case "ssl", "smtps", "tls":
		return true
	}
	return false
}

// LoadSMTPSettings reads <section>/SMTP/{Host,Port,Login,Password,Protocol,FromAddress}.
// Host is required, Port defaults to 25.
func LoadSMTPSettings(lookup config.Lookup, section string) (SMTPSettings, error) {
	base := strings.TrimRight(section, "/") + "/SMTP/"
	get := func(key string) string {
		v, _ := lookup.Get(base + key)
		return strings.TrimSpace(v)
	}

	s := SMTPSettings{
		Host:        get("Host"),
		Port:        defaultSMTPPort,
		Login:       get("Login"),
		Password:    get("Password"),
		Protocol:    get("Protocol"),
		FromAddress: get("FromAddress"),
	}
	if s.Host == "" {
		return SMTPSettings{}, fmt.Errorf("%w: %sHost is not set", ErrNotConfigured, base)
	}
	if raw := get("Port"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return SMTPSettings{}, fmt.Errorf("%w: %sPort %q is not a valid port", ErrNotConfigured, base, raw)
		}
		s.Port = port
	}
	return s, nil
}
