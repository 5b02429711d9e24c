// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/telekom/notification-service/pkg/config"
)

// Store is the persistence contract of the notification service.
type Store interface {
	// SetAssigneeGroup creates the group or replaces its membership.
	SetAssigneeGroup(ctx context.Context, name string, users []string) error
	// GetAssigneeGroup returns the sorted members, or ErrGroupNotFound.
	GetAssigneeGroup(ctx context.Context, name string) ([]string, error)
	// DeleteAssigneeGroup removes the group and reports whether it existed.
	DeleteAssigneeGroup(ctx context.Context, name string) (bool, error)
	GetAssigneeGroups(ctx context.Context) (map[string][]string, error)
	// GetAssigneeGroupsForUser returns every group user belongs to, with all members.
	GetAssigneeGroupsForUser(ctx context.Context, user string) (map[string][]string, error)

	// AddNotification stores n and returns its ID. An empty ID is generated.
	AddNotification(ctx context.Context, n Notification) (string, error)
	// RemoveNotifications deletes user's notifications with the given IDs, or
	// all of them when ids is empty.
	RemoveNotifications(ctx context.Context, user string, ids []string) (int64, error)
	// SetNotificationsSeen updates the seen flag with the same selection rules
	// as RemoveNotifications.
	SetNotificationsSeen(ctx context.Context, user string, ids []string, seen bool) (int64, error)
	GetNotifications(ctx context.Context, q Query) ([]Notification, error)
	// PurgeExpiredNotifications deletes notifications expired at now.
	PurgeExpiredNotifications(ctx context.Context, now time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(cfg config.Store) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		s, err := NewSQLiteStore(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
