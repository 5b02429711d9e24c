// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Message is a single outgoing mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// SendInfo describes an accepted delivery.
type SendInfo struct {
	Host       string   `json:"host" yaml:"host"`
	Port       int      `json:"port" yaml:"port"`
	Recipients []string `json:"recipients" yaml:"recipients"`
	MessageID  string   `json:"messageId" yaml:"messageId"`
}

// Transport delivers a message. Send blocks and makes exactly one attempt.
type Transport interface {
	Send(msg Message) (SendInfo, error)
}

// TransportFactory builds a transport for the given settings.
type TransportFactory func(SMTPSettings) Transport

// ParseRecipients splits an address list on commas and semicolons.
func ParseRecipients(address string) []string {
	parts := strings.FieldsFunc(address, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SMTPTransport sends mail with gomail.
type SMTPTransport struct {
	settings SMTPSettings
	dialer   *gomail.Dialer
	send     func(*gomail.Dialer, ...*gomail.Message) error
}

// NewSMTPTransport is the production TransportFactory.
func NewSMTPTransport(s SMTPSettings) Transport {
	d := gomail.NewDialer(s.Host, s.Port, s.Login, s.Password)
	if s.ImplicitTLS() {
		d.SSL = true
		d.TLSConfig = &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}
	}
	return &SMTPTransport{
		settings: s,
		dialer:   d,
		send: func(d *gomail.Dialer, m ...*gomail.Message) error {
			return d.DialAndSend(m...)
		},
	}
}

func (t *SMTPTransport) message(msg Message, messageID string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetDateHeader("Date", timeNow())
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}
	m.SetBody(contentType, msg.Body)
	return m
}

func (t *SMTPTransport) Send(msg Message) (SendInfo, error) {
	if len(msg.To) == 0 {
		return SendInfo{}, fmt.Errorf("no recipients")
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), t.settings.Host)
	if err := t.send(t.dialer, t.message(msg, messageID)); err != nil {
		return SendInfo{}, fmt.Errorf("smtp %s:%d: %w", t.settings.Host, t.settings.Port, err)
	}
	return SendInfo{
		Host:       t.settings.Host,
		Port:       t.settings.Port,
		Recipients: append([]string(nil), msg.To...),
		MessageID:  messageID,
	}, nil
}
