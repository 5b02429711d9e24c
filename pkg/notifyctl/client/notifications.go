// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
	"time"
)

type Notification struct {
	ID          string    `json:"id" yaml:"id"`
	User        string    `json:"user" yaml:"user"`
	Message     string    `json:"message" yaml:"message"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Expiration  time.Time `json:"expiration" yaml:"expiration"`
	Seen        bool      `json:"seen" yaml:"seen"`
	DeferToMail bool      `json:"deferToMail" yaml:"deferToMail"`
}

type AddNotificationRequest struct {
	User        string `json:"user"`
	Message     string `json:"message"`
	Lifetime    *int64 `json:"lifetime,omitempty"`
	DeferToMail *bool  `json:"deferToMail,omitempty"`
}

// Query mirrors the body of POST /api/notifications/query.
type Query struct {
	Filter map[string][]string `json:"filter,omitempty"`
	Sort   [][]string          `json:"sort,omitempty"`
	Offset int                 `json:"offset,omitempty"`
	Limit  int                 `json:"limit,omitempty"`
}

type selection struct {
	User string   `json:"user"`
	IDs  []string `json:"ids"`
}

type NotificationService struct {
	client *Client
}

func (c *Client) Notifications() *NotificationService {
	return &NotificationService{client: c}
}

// Add returns the id of the created notification.
func (s *NotificationService) Add(ctx context.Context, req AddNotificationRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := s.client.do(ctx, http.MethodPost, "notifications", req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (s *NotificationService) Query(ctx context.Context, q Query) ([]Notification, error) {
	var out []Notification
	if err := s.client.do(ctx, http.MethodPost, "notifications/query", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes ids of user. No ids selects all of the user's notifications.
func (s *NotificationService) Remove(ctx context.Context, user string, ids []string) error {
	return s.client.do(ctx, http.MethodPost, "notifications/remove", newSelection(user, ids), nil)
}

func (s *NotificationService) MarkRead(ctx context.Context, user string, ids []string) error {
	return s.client.do(ctx, http.MethodPost, "notifications/read", newSelection(user, ids), nil)
}

func (s *NotificationService) MarkUnread(ctx context.Context, user string, ids []string) error {
	return s.client.do(ctx, http.MethodPost, "notifications/unread", newSelection(user, ids), nil)
}

func newSelection(user string, ids []string) selection {
	if ids == nil {
		ids = []string{}
	}
	return selection{User: user, IDs: ids}
}
