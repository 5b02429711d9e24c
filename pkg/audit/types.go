/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened.
type EventType string

const (
	// === Mail events ===
	EventMailSent       EventType = "mail.sent"
	EventMailSuppressed EventType = "mail.suppressed"
	EventMailFailed     EventType = "mail.failed"

	// === Notification events ===
	EventNotificationAdded   EventType = "notification.added"
	EventNotificationRemoved EventType = "notification.removed"
	EventNotificationSeen    EventType = "notification.seen"
	EventNotificationUnseen  EventType = "notification.unseen"
	EventNotificationPurged  EventType = "notification.purged"

	// === Assignee group events ===
	EventAssigneeGroupSet     EventType = "assignee_group.set"
	EventAssigneeGroupDeleted EventType = "assignee_group.deleted"
)

// Severity represents the severity level of an audit event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Event represents a single audit event
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	// Actor is the authenticated user, or "system" for internal activity.
	Actor string `json:"actor"`
	// Target is the affected user, group name or mail recipient list.
	Target  string                 `json:"target"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ActorSystem marks events not caused by a request.
const ActorSystem = "system"

// NewEvent creates an info event with a fresh ID and the current time.
func NewEvent(t EventType, actor, target string) *Event {
	if actor == "" {
		actor = ActorSystem
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      t,
		Severity:  SeverityInfo,
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		Target:    target,
	}
}

// With adds a detail field and returns the event for chaining.
func (e *Event) With(key string, value interface{}) *Event {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithSeverity overrides the severity and returns the event for chaining.
func (e *Event) WithSeverity(s Severity) *Event {
	e.Severity = s
	return e
}
