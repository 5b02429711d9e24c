// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/telekom/notification-service/pkg/audit"
	"github.com/telekom/notification-service/pkg/config"
	"github.com/telekom/notification-service/pkg/dedup"
	"github.com/telekom/notification-service/pkg/metrics"
)

var (
	// ErrValidation marks requests rejected before any delivery attempt.
	ErrValidation = errors.New("invalid mail request")
	// ErrNotConfigured marks missing or malformed SMTP configuration.
	ErrNotConfigured = errors.New("smtp is not configured")
	// ErrDelivery marks a failed transport attempt.
	ErrDelivery = errors.New("mail delivery failed")
)

// DedupWindow is how long a delivered mail suppresses identical ones.
const DedupWindow = 24 * time.Hour

// SuppressedMessage is reported when identical content was already delivered.
const SuppressedMessage = "Email with the same content already sent today to current addresses, come back tomorrow"

var timeNow = time.Now

// Request is a sendMail call.
type Request struct {
	Address     string `json:"address"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	FromAddress string `json:"fromAddress"`
	// HTML sends the body as text/html.
	HTML bool `json:"-"`
	// Actor is recorded in the audit trail.
	Actor string `json:"-"`
}

// Result of a successful or suppressed sendMail call.
type Result struct {
	Message    string    `json:"message" yaml:"message"`
	Suppressed bool      `json:"suppressed" yaml:"suppressed"`
	Info       *SendInfo `json:"info,omitempty" yaml:"info,omitempty"`
}

// Mailer is implemented by Dispatcher.
type Mailer interface {
	SendMail(ctx context.Context, req Request) (Result, error)
}

// Dispatcher sends mail with 24h content deduplication.
type Dispatcher struct {
	cache    *dedup.Cache
	lookup   config.Lookup
	section  string
	factory  TransportFactory
	recorder audit.Recorder
	log      *zap.SugaredLogger
	inflight singleflight.Group
}

// NewDispatcher wires a dispatcher. SMTP settings are read from lookup under
// ServiceSection on every send.
func NewDispatcher(cache *dedup.Cache, lookup config.Lookup, factory TransportFactory, recorder audit.Recorder, log *zap.SugaredLogger) *Dispatcher {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	if factory == nil {
		factory = NewSMTPTransport
	}
	return &Dispatcher{
		cache:    cache,
		lookup:   lookup,
		section:  ServiceSection,
		factory:  factory,
		recorder: recorder,
		log:      log.Named("dispatcher"),
	}
}

// SendMail delivers req unless identical content went to the same addresses
// within DedupWindow. Only successful deliveries enter the dedup cache, so a
// failed send can be retried immediately. Identical concurrent calls share
// one delivery attempt; a caller that gives up does not cancel it for the
// others.
func (d *Dispatcher) SendMail(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Address) == "" {
		return Result{}, fmt.Errorf("%w: address must not be empty", ErrValidation)
	}
	recipients := ParseRecipients(req.Address)
	if len(recipients) == 0 {
		return Result{}, fmt.Errorf("%w: address %q contains no recipient", ErrValidation, req.Address)
	}

	key := dedup.Fingerprint(req.Address, req.Subject, req.Body)
	d.log.Debugw("Received mail request", "address", req.Address, "subject", req.Subject, "fingerprint", key.String())

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	flight := d.inflight.DoChan(key.String(), func() (interface{}, error) {
		return d.send(key, recipients, req)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-flight:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	}
}

func (d *Dispatcher) send(key dedup.Key, recipients []string, req Request) (Result, error) {
	if d.cache.Exists(key) {
		metrics.MailSuppressed.Inc()
		d.recorder.Record(audit.NewEvent(audit.EventMailSuppressed, req.Actor, req.Address).
			With("subject", req.Subject))
		d.log.Infow("Suppressing duplicate mail", "address", req.Address, "subject", req.Subject)
		return Result{Message: SuppressedMessage, Suppressed: true}, nil
	}

	settings, err := LoadSMTPSettings(d.lookup, d.section)
	if err != nil {
		d.log.Errorw("Cannot resolve SMTP settings", "error", err)
		return Result{}, err
	}

	from := strings.TrimSpace(req.FromAddress)
	if from == "" {
		from = settings.FromAddress
	}
	if from == "" {
		return Result{}, fmt.Errorf("%w: no from address given and none configured", ErrValidation)
	}

	info, err := d.factory(settings).Send(Message{
		From:    from,
		To:      recipients,
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.HTML,
	})
	if err != nil {
		metrics.MailFailed.WithLabelValues(settings.Host).Inc()
		d.recorder.Record(audit.NewEvent(audit.EventMailFailed, req.Actor, req.Address).
			WithSeverity(audit.SeverityWarning).
			With("subject", req.Subject).
			With("host", settings.Host).
			With("error", err.Error()))
		d.log.Warnw("Could not send mail", "address", req.Address, "subject", req.Subject, "host", settings.Host, "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	d.cache.Add(key, DedupWindow)
	metrics.MailSent.WithLabelValues(settings.Host).Inc()
	d.recorder.Record(audit.NewEvent(audit.EventMailSent, req.Actor, req.Address).
		With("subject", req.Subject).
		With("host", settings.Host).
		With("messageId", info.MessageID))
	d.log.Infow("Mail sent successfully", "address", req.Address, "subject", req.Subject, "host", settings.Host)
	d.log.Debugw("Mail delivery details", "messageId", info.MessageID, "recipients", info.Recipients)

	return Result{Message: "Mail sent successfully to " + req.Address, Info: &info}, nil
}
