// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ErrGroupNotFound is returned when an assignee group does not exist.
var ErrGroupNotFound = errors.New("assignee group not found")

// ErrInvalidQuery wraps every rejected filter or sort specification.
var ErrInvalidQuery = errors.New("invalid notification query")

// Notification is a short-lived message addressed to a single user.
type Notification struct {
	ID          string    `json:"id" yaml:"id"`
	User        string    `json:"user" yaml:"user"`
	Message     string    `json:"message" yaml:"message"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Expiration  time.Time `json:"expiration" yaml:"expiration"`
	Seen        bool      `json:"seen" yaml:"seen"`
	DeferToMail bool      `json:"deferToMail" yaml:"deferToMail"`
}

// Expired reports whether n is past its expiration at now. Stores keep
// second precision, so the comparison is done in whole seconds: a
// notification stays visible until the second after creation plus its
// lifetime has begun, and one added with lifetime 0 stays visible for the
// rest of its creation second.
func (n Notification) Expired(now time.Time) bool {
	return now.Unix() > n.Expiration.Unix()
}

func truncateToSecond(t time.Time) time.Time {
	return time.Unix(t.Unix(), 0).UTC()
}

// Filter keys accepted by GetNotifications.
const (
	FilterID          = "id"
	FilterUser        = "user"
	FilterMessage     = "message"
	FilterSeen        = "seen"
	FilterDeferToMail = "deferToMail"
)

// Sort fields accepted by GetNotifications.
const (
	SortID         = "id"
	SortUser       = "user"
	SortTimestamp  = "timestamp"
	SortExpiration = "expiration"
	SortSeen       = "seen"
)

var filterColumns = map[string]string{
	FilterID:          "id",
	FilterUser:        "username",
	FilterMessage:     "message",
	FilterSeen:        "seen",
	FilterDeferToMail: "defer_to_mail",
}

var sortColumns = map[string]string{
	SortID:         "id",
	SortUser:       "username",
	SortTimestamp:  "created_at",
	SortExpiration: "expires_at",
	SortSeen:       "seen",
}

// Filter restricts a notification query. Values of one key are alternatives,
// different keys must all match. A key with no values places no restriction.
type Filter map[string][]string

// Clone returns a deep copy of f.
func (f Filter) Clone() Filter {
	if f == nil {
		return nil
	}
	out := make(Filter, len(f))
	for k, v := range f {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// SortField orders query results by one field.
type SortField struct {
	Field string `json:"field" yaml:"field"`
	Desc  bool   `json:"desc" yaml:"desc"`
}

// Query describes a notification lookup. Limit 0 means no limit.
// Notifications expired at Now are never returned; a zero Now means time.Now.
type Query struct {
	Filter Filter
	Sort   []SortField
	Offset int
	Limit  int
	Now    time.Time
}

// Validate checks filter keys, boolean filter values, sort fields and paging.
func (q Query) Validate() error {
	keys := make([]string, 0, len(q.Filter))
	for k := range q.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := filterColumns[k]; !ok {
			return fmt.Errorf("%w: unknown filter key %q", ErrInvalidQuery, k)
		}
		if k == FilterSeen || k == FilterDeferToMail {
			for _, v := range q.Filter[k] {
				if _, err := strconv.ParseBool(v); err != nil {
					return fmt.Errorf("%w: filter %q expects a boolean, got %q", ErrInvalidQuery, k, v)
				}
			}
		}
	}
	for _, s := range q.Sort {
		if _, ok := sortColumns[s.Field]; !ok {
			return fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, s.Field)
		}
	}
	if q.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidQuery)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidQuery)
	}
	return nil
}

func (q Query) now() time.Time {
	if q.Now.IsZero() {
		return time.Now()
	}
	return q.Now
}

// boolValues converts validated boolean filter values.
func boolValues(values []string) []bool {
	out := make([]bool, 0, len(values))
	for _, v := range values {
		b, _ := strconv.ParseBool(v)
		out = append(out, b)
	}
	return out
}
