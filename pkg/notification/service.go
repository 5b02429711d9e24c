// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/audit"
	"github.com/telekom/notification-service/pkg/config"
	"github.com/telekom/notification-service/pkg/identity"
	"github.com/telekom/notification-service/pkg/mail"
	"github.com/telekom/notification-service/pkg/metrics"
	"github.com/telekom/notification-service/pkg/store"
)

// ErrValidation marks requests rejected before reaching the store.
var ErrValidation = errors.New("invalid notification request")

// MailQueue accepts deferred mails. Satisfied by *mail.Queue.
type MailQueue interface {
	Enqueue(id string, req mail.Request) error
}

// AddRequest carries the raw caller input of addNotificationForUser.
type AddRequest struct {
	User    string
	Message string
	// Lifetime in seconds, see ParseLifetime.
	Lifetime any
	// DeferToMail defaults to true when nil.
	DeferToMail *bool
}

// Query is a caller supplied notification lookup. Each Sort entry is a field
// name optionally followed by "ASC" or "DESC".
type Query struct {
	Filter store.Filter `json:"filter"`
	Sort   [][]string   `json:"sort"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}

// Service is the notification facade used by the API.
type Service struct {
	store    store.Store
	lookup   config.Lookup
	queue    MailQueue
	recorder audit.Recorder
	log      *zap.SugaredLogger
	now      func() time.Time
}

type Option func(*Service)

// WithMailQueue enables mail delivery of deferToMail notifications. Mail
// addresses are looked up at Registry/Users/<user>/Email in lookup.
func WithMailQueue(q MailQueue, lookup config.Lookup) Option {
	return func(s *Service) {
		s.queue = q
		s.lookup = lookup
	}
}

func WithRecorder(r audit.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, log *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{
		store:    st,
		recorder: audit.NopRecorder{},
		log:      log.Named("notification"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddNotificationForUser validates req, stores the notification and, when
// DeferToMail is set, queues a mail to the user's registered address.
func (s *Service) AddNotificationForUser(ctx context.Context, actor string, req AddRequest) (string, error) {
	user := strings.TrimSpace(req.User)
	if user == "" {
		return "", fmt.Errorf("%w: user must not be empty", ErrValidation)
	}
	lifetime, err := ParseLifetime(req.Lifetime)
	if err != nil {
		return "", err
	}
	deferToMail := true
	if req.DeferToMail != nil {
		deferToMail = *req.DeferToMail
	}

	created := s.now().UTC()
	n := store.Notification{
		User:        user,
		Message:     req.Message,
		Timestamp:   created,
		Expiration:  created.Add(lifetime),
		DeferToMail: deferToMail,
	}
	id, err := s.store.AddNotification(ctx, n)
	if err != nil {
		s.log.Errorw("Failed to store notification", "user", user, "error", err)
		return "", fmt.Errorf("add notification for %q: %w", user, err)
	}
	n.ID = id

	metrics.NotificationsAdded.Inc()
	s.recorder.Record(audit.NewEvent(audit.EventNotificationAdded, actor, user).
		With("id", id).
		With("lifetime", int64(lifetime/time.Second)).
		With("deferToMail", deferToMail))
	s.log.Infow("Notification added", "id", id, "user", user, "expiration", n.Expiration, "deferToMail", deferToMail)

	if deferToMail {
		s.deferToMail(actor, n)
	}
	return id, nil
}

func (s *Service) deferToMail(actor string, n store.Notification) {
	if s.queue == nil || s.lookup == nil {
		s.log.Debugw("Mail delivery of notifications is disabled", "id", n.ID)
		return
	}
	address, ok := s.lookup.Get("Registry/Users/" + n.User + "/Email")
	address = strings.TrimSpace(address)
	if !ok || address == "" {
		s.log.Debugw("No mail address registered for user, skipping mail", "id", n.ID, "user", n.User)
		return
	}
	subject := mail.NotificationSubject(n.Message)
	body, err := mail.RenderNotificationMail(mail.NotificationMailParams{
		User:           n.User,
		Message:        n.Message,
		NotificationID: n.ID,
		CreatedAt:      n.Timestamp,
		ExpiresAt:      n.Expiration,
		Subject:        subject,
	})
	if err != nil {
		s.log.Warnw("Failed to render notification mail", "id", n.ID, "error", err)
		return
	}
	if err := s.queue.Enqueue(n.ID, mail.Request{
		Address: address,
		Subject: subject,
		Body:    body,
		HTML:    true,
		Actor:   actor,
	}); err != nil {
		s.log.Warnw("Failed to queue notification mail", "id", n.ID, "user", n.User, "error", err)
	}
}

// RemoveNotificationsForUser deletes the listed notifications of the
// narrowed user, or all of them when ids is empty.
func (s *Service) RemoveNotificationsForUser(ctx context.Context, id identity.Identity, user string, ids []string) error {
	target := identity.Narrow(strings.TrimSpace(user), id)
	if target == "" {
		return fmt.Errorf("%w: user must not be empty", ErrValidation)
	}
	n, err := s.store.RemoveNotifications(ctx, target, ids)
	if err != nil {
		s.log.Errorw("Failed to remove notifications", "user", target, "error", err)
		return fmt.Errorf("remove notifications of %q: %w", target, err)
	}
	metrics.NotificationsRemoved.Add(float64(n))
	s.recorder.Record(audit.NewEvent(audit.EventNotificationRemoved, id.Username, target).
		With("ids", ids).
		With("count", n))
	s.log.Infow("Notifications removed", "user", target, "requested", len(ids), "removed", n)
	return nil
}

func (s *Service) MarkNotificationsAsRead(ctx context.Context, id identity.Identity, user string, ids []string) error {
	return s.setSeen(ctx, id, user, ids, true)
}

func (s *Service) MarkNotificationsAsNotRead(ctx context.Context, id identity.Identity, user string, ids []string) error {
	return s.setSeen(ctx, id, user, ids, false)
}

func (s *Service) setSeen(ctx context.Context, id identity.Identity, user string, ids []string, seen bool) error {
	target := identity.Narrow(strings.TrimSpace(user), id)
	if target == "" {
		return fmt.Errorf("%w: user must not be empty", ErrValidation)
	}
	n, err := s.store.SetNotificationsSeen(ctx, target, ids, seen)
	if err != nil {
		s.log.Errorw("Failed to update seen flag", "user", target, "seen", seen, "error", err)
		return fmt.Errorf("update notifications of %q: %w", target, err)
	}
	eventType := audit.EventNotificationSeen
	if !seen {
		eventType = audit.EventNotificationUnseen
	}
	s.recorder.Record(audit.NewEvent(eventType, id.Username, target).
		With("ids", ids).
		With("count", n))
	s.log.Debugw("Seen flag updated", "user", target, "seen", seen, "updated", n)
	return nil
}

// ParseSort converts caller sort pairs into store sort fields.
func ParseSort(pairs [][]string) ([]store.SortField, error) {
	out := make([]store.SortField, 0, len(pairs))
	for _, p := range pairs {
		if len(p) == 0 || len(p) > 2 {
			return nil, fmt.Errorf("%w: sort entry %v must be [field] or [field, direction]", ErrValidation, p)
		}
		f := store.SortField{Field: strings.TrimSpace(p[0])}
		if len(p) == 2 {
			switch strings.ToUpper(strings.TrimSpace(p[1])) {
			case "ASC", "":
			case "DESC":
				f.Desc = true
			default:
				return nil, fmt.Errorf("%w: sort direction %q must be ASC or DESC", ErrValidation, p[1])
			}
		}
		out = append(out, f)
	}
	return out, nil
}

// GetNotifications returns the unexpired notifications matching q. The user
// filter of unprivileged callers is replaced with their own username.
func (s *Service) GetNotifications(ctx context.Context, id identity.Identity, q Query) ([]store.Notification, error) {
	order, err := ParseSort(q.Sort)
	if err != nil {
		return nil, err
	}
	sq := store.Query{
		Filter: identity.NarrowFilter(q.Filter, id),
		Sort:   order,
		Offset: q.Offset,
		Limit:  q.Limit,
		Now:    s.now(),
	}
	if err := sq.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	out, err := s.store.GetNotifications(ctx, sq)
	if err != nil {
		if errors.Is(err, store.ErrInvalidQuery) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		s.log.Errorw("Failed to query notifications", "user", id.Username, "error", err)
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	return out, nil
}

// PurgeExpired deletes every notification expired by now.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.PurgeExpiredNotifications(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired notifications: %w", err)
	}
	metrics.NotificationsPurged.Add(float64(n))
	if n > 0 {
		s.recorder.Record(audit.NewEvent(audit.EventNotificationPurged, audit.ActorSystem, "").With("count", n))
	}
	s.log.Infow("Expired notifications purged", "count", n)
	return n, nil
}
