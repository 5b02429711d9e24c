// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"cmp"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// MemoryStore keeps everything in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	groups        map[string]map[string]struct{}
	notifications map[string]Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		groups:        make(map[string]map[string]struct{}),
		notifications: make(map[string]Notification),
	}
}

func (s *MemoryStore) SetAssigneeGroup(_ context.Context, name string, users []string) error {
	members := make(map[string]struct{}, len(users))
	for _, u := range users {
		members[u] = struct{}{}
	}
	s.mu.Lock()
	s.groups[name] = members
	s.mu.Unlock()
	return nil
}

func sortedMembers(members map[string]struct{}) []string {
	out := make([]string, 0, len(members))
	for u := range members {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (s *MemoryStore) GetAssigneeGroup(_ context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members, ok := s.groups[name]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return sortedMembers(members), nil
}

func (s *MemoryStore) DeleteAssigneeGroup(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.groups[name]
	delete(s.groups, name)
	return ok, nil
}

func (s *MemoryStore) GetAssigneeGroups(_ context.Context) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string, len(s.groups))
	for name, members := range s.groups {
		out[name] = sortedMembers(members)
	}
	return out, nil
}

func (s *MemoryStore) GetAssigneeGroupsForUser(_ context.Context, user string) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string)
	for name, members := range s.groups {
		if _, ok := members[user]; ok {
			out[name] = sortedMembers(members)
		}
	}
	return out, nil
}

func (s *MemoryStore) AddNotification(_ context.Context, n Notification) (string, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.Timestamp = truncateToSecond(n.Timestamp)
	n.Expiration = truncateToSecond(n.Expiration)
	s.mu.Lock()
	s.notifications[n.ID] = n
	s.mu.Unlock()
	return n.ID, nil
}

// selected reports whether n belongs to user and, if ids is not empty, is listed.
func selected(n Notification, user string, ids []string) bool {
	if n.User != user {
		return false
	}
	return len(ids) == 0 || slices.Contains(ids, n.ID)
}

func (s *MemoryStore) RemoveNotifications(_ context.Context, user string, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, notif := range s.notifications {
		if selected(notif, user, ids) {
			delete(s.notifications, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) SetNotificationsSeen(_ context.Context, user string, ids []string, seen bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, notif := range s.notifications {
		if selected(notif, user, ids) {
			notif.Seen = seen
			s.notifications[id] = notif
			n++
		}
	}
	return n, nil
}

func matchesFilter(n Notification, f Filter) bool {
	for key, values := range f {
		if len(values) == 0 {
			continue
		}
		var ok bool
		switch key {
		case FilterID:
			ok = slices.Contains(values, n.ID)
		case FilterUser:
			ok = slices.Contains(values, n.User)
		case FilterMessage:
			ok = slices.Contains(values, n.Message)
		case FilterSeen:
			ok = slices.Contains(boolValues(values), n.Seen)
		case FilterDeferToMail:
			ok = slices.Contains(boolValues(values), n.DeferToMail)
		}
		if !ok {
			return false
		}
	}
	return true
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareField(a, b Notification, field string) int {
	switch field {
	case SortID:
		return strings.Compare(a.ID, b.ID)
	case SortUser:
		return strings.Compare(a.User, b.User)
	case SortTimestamp:
		return a.Timestamp.Compare(b.Timestamp)
	case SortExpiration:
		return a.Expiration.Compare(b.Expiration)
	case SortSeen:
		return compareBool(a.Seen, b.Seen)
	}
	return 0
}

func (s *MemoryStore) GetNotifications(_ context.Context, q Query) ([]Notification, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	now := q.now()

	s.mu.RLock()
	out := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if n.Expired(now) || !matchesFilter(n, q.Filter) {
			continue
		}
		out = append(out, n)
	}
	s.mu.RUnlock()

	order := q.Sort
	if len(order) == 0 {
		order = []SortField{{Field: SortTimestamp}}
	}
	slices.SortFunc(out, func(a, b Notification) int {
		for _, sf := range order {
			c := compareField(a, b, sf.Field)
			if sf.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if q.Offset >= len(out) {
		return []Notification{}, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) PurgeExpiredNotifications(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, notif := range s.notifications {
		if notif.Expired(now) {
			delete(s.notifications, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
