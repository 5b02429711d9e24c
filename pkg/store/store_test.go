// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/notification-service/pkg/config"
)

var baseTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// newTestSQLiteStore creates an in-memory SQLiteStore with all migrations applied.
func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestSQLiteStore(t)) })
}

func addNotification(t *testing.T, s Store, id, user, msg string, created time.Time, lifetime time.Duration) {
	t.Helper()
	_, err := s.AddNotification(context.Background(), Notification{
		ID:          id,
		User:        user,
		Message:     msg,
		Timestamp:   created,
		Expiration:  created.Add(lifetime),
		DeferToMail: true,
	})
	require.NoError(t, err)
}

func ids(ns []Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func TestAssigneeGroups(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		require.NoError(t, s.SetAssigneeGroup(ctx, "oncall", []string{"b", "a"}))
		users, err := s.GetAssigneeGroup(ctx, "oncall")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, users)

		require.NoError(t, s.SetAssigneeGroup(ctx, "oncall", []string{"c"}))
		users, err = s.GetAssigneeGroup(ctx, "oncall")
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, users, "membership is replaced, not merged")

		require.NoError(t, s.SetAssigneeGroup(ctx, "empty", nil))
		users, err = s.GetAssigneeGroup(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, users)

		_, err = s.GetAssigneeGroup(ctx, "missing")
		assert.True(t, errors.Is(err, ErrGroupNotFound))

		require.NoError(t, s.SetAssigneeGroup(ctx, "dba", []string{"c", "d"}))
		all, err := s.GetAssigneeGroups(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{
			"oncall": {"c"},
			"empty":  {},
			"dba":    {"c", "d"},
		}, all)

		forUser, err := s.GetAssigneeGroupsForUser(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"oncall": {"c"}, "dba": {"c", "d"}}, forUser)

		forUser, err = s.GetAssigneeGroupsForUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, forUser)

		existed, err := s.DeleteAssigneeGroup(ctx, "dba")
		require.NoError(t, err)
		assert.True(t, existed)
		existed, err = s.DeleteAssigneeGroup(ctx, "dba")
		require.NoError(t, err)
		assert.False(t, existed)

		_, err = s.GetAssigneeGroup(ctx, "dba")
		assert.ErrorIs(t, err, ErrGroupNotFound)
		forUser, err = s.GetAssigneeGroupsForUser(ctx, "d")
		require.NoError(t, err)
		assert.Empty(t, forUser, "members are removed with their group")
	})
}

func TestNotificationLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		id, err := s.AddNotification(ctx, Notification{
			User:       "alice",
			Message:    "disk full",
			Timestamp:  baseTime,
			Expiration: baseTime.Add(time.Hour),
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := s.GetNotifications(ctx, Query{Now: baseTime})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, id, got[0].ID)
		assert.Equal(t, "alice", got[0].User)
		assert.Equal(t, "disk full", got[0].Message)
		assert.True(t, got[0].Timestamp.Equal(baseTime))
		assert.True(t, got[0].Expiration.Equal(baseTime.Add(time.Hour)))
		assert.False(t, got[0].Seen)

		got, err = s.GetNotifications(ctx, Query{Now: baseTime.Add(time.Hour)})
		require.NoError(t, err)
		assert.Len(t, got, 1, "still visible exactly at expiration")

		got, err = s.GetNotifications(ctx, Query{Now: baseTime.Add(time.Hour + time.Second)})
		require.NoError(t, err)
		assert.Empty(t, got, "expired notifications are hidden")
	})
}

func TestNotificationFilterAndSeen(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		addNotification(t, s, "n1", "alice", "one", baseTime, time.Hour)
		addNotification(t, s, "n2", "alice", "two", baseTime.Add(time.Second), time.Hour)
		addNotification(t, s, "n3", "bob", "three", baseTime.Add(2*time.Second), time.Hour)

		q := Query{Now: baseTime, Filter: Filter{FilterUser: {"alice"}}}
		got, err := s.GetNotifications(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"n1", "n2"}, ids(got))

		n, err := s.SetNotificationsSeen(ctx, "alice", []string{"n1"}, true)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		unseen := Query{Now: baseTime, Filter: Filter{FilterUser: {"alice"}, FilterSeen: {"false"}}}
		got, err = s.GetNotifications(ctx, unseen)
		require.NoError(t, err)
		assert.Equal(t, []string{"n2"}, ids(got))

		n, err = s.SetNotificationsSeen(ctx, "alice", []string{"n1"}, false)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		got, err = s.GetNotifications(ctx, unseen)
		require.NoError(t, err)
		assert.Equal(t, []string{"n1", "n2"}, ids(got))

		n, err = s.SetNotificationsSeen(ctx, "alice", []string{"n3"}, true)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n, "ids of other users are not touched")

		n, err = s.SetNotificationsSeen(ctx, "alice", nil, true)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n, "empty id list selects all of the user's notifications")

		got, err = s.GetNotifications(ctx, Query{Now: baseTime, Filter: Filter{FilterSeen: {"1"}, FilterDeferToMail: {"true"}}})
		require.NoError(t, err)
		assert.Equal(t, []string{"n1", "n2"}, ids(got))

		got, err = s.GetNotifications(ctx, Query{Now: baseTime, Filter: Filter{FilterID: {"n1", "n3"}, FilterMessage: {"three"}}})
		require.NoError(t, err)
		assert.Equal(t, []string{"n3"}, ids(got))
	})
}

func TestNotificationSortAndPaging(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		addNotification(t, s, "a", "carol", "m", baseTime.Add(2*time.Second), time.Hour)
		addNotification(t, s, "b", "alice", "m", baseTime, 3*time.Hour)
		addNotification(t, s, "c", "bob", "m", baseTime.Add(time.Second), 2*time.Hour)

		got, err := s.GetNotifications(ctx, Query{Now: baseTime})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "a"}, ids(got), "default order is by timestamp")

		got, err = s.GetNotifications(ctx, Query{Now: baseTime, Sort: []SortField{{Field: SortUser, Desc: true}}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "b"}, ids(got))

		got, err = s.GetNotifications(ctx, Query{Now: baseTime, Sort: []SortField{{Field: SortExpiration}}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "b"}, ids(got))

		got, err = s.GetNotifications(ctx, Query{Now: baseTime, Sort: []SortField{{Field: SortID}}, Offset: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(got))

		got, err = s.GetNotifications(ctx, Query{Now: baseTime, Sort: []SortField{{Field: SortID}}, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, ids(got))

		got, err = s.GetNotifications(ctx, Query{Now: baseTime, Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestRemoveNotifications(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		addNotification(t, s, "n1", "alice", "one", baseTime, time.Hour)
		addNotification(t, s, "n2", "alice", "two", baseTime, time.Hour)
		addNotification(t, s, "n3", "bob", "three", baseTime, time.Hour)

		n, err := s.RemoveNotifications(ctx, "alice", []string{"n1", "n3"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		n, err = s.RemoveNotifications(ctx, "alice", nil)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		got, err := s.GetNotifications(ctx, Query{Now: baseTime})
		require.NoError(t, err)
		assert.Equal(t, []string{"n3"}, ids(got))
	})
}

func TestPurgeExpiredNotifications(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		addNotification(t, s, "old", "alice", "old", baseTime.Add(-2*time.Hour), time.Hour)
		addNotification(t, s, "edge", "alice", "edge", baseTime.Add(-time.Hour), time.Hour)
		addNotification(t, s, "new", "alice", "new", baseTime, time.Hour)

		n, err := s.PurgeExpiredNotifications(ctx, baseTime)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		n, err = s.PurgeExpiredNotifications(ctx, baseTime)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)

		got, err := s.GetNotifications(ctx, Query{Now: baseTime.Add(-3 * time.Hour)})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"edge", "new"}, ids(got), "purged rows are gone for good")
	})
}

func TestQueryValidation(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		ok   bool
	}{
		{"empty", Query{}, true},
		{"all keys", Query{Filter: Filter{"id": {"x"}, "user": {"u"}, "message": {"m"}, "seen": {"true"}, "deferToMail": {"0"}}}, true},
		{"unknown key", Query{Filter: Filter{"severity": {"high"}}}, false},
		{"non boolean seen", Query{Filter: Filter{"seen": {"maybe"}}}, false},
		{"unknown sort", Query{Sort: []SortField{{Field: "priority"}}}, false},
		{"negative offset", Query{Offset: -1}, false},
		{"negative limit", Query{Limit: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}

	forEachStore(t, func(t *testing.T, s Store) {
		_, err := s.GetNotifications(context.Background(), Query{Filter: Filter{"severity": {"high"}}})
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})
}

func TestFilterClone(t *testing.T) {
	f := Filter{"user": {"alice"}}
	c := f.Clone()
	c["user"][0] = "bob"
	assert.Equal(t, "alice", f["user"][0])
	assert.Nil(t, Filter(nil).Clone())
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SetAssigneeGroup(ctx, "oncall", []string{"a"}))
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err, "migrations must be skipped on an up to date schema")
	defer func() { _ = s.Close() }()
	users, err := s.GetAssigneeGroup(ctx, "oncall")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, users)
}

func TestOpen(t *testing.T) {
	s, err := Open(config.Store{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(config.Store{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.Store{Driver: "cassandra"})
	assert.Error(t, err)
}

func TestWithConnParams(t *testing.T) {
	assert.Equal(t, "n.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate", withConnParams("n.db"))
	assert.Equal(t, "file:n.db?cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate",
		withConnParams("file:n.db?cache=shared"))
	assert.Equal(t, "n.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)&_txlock=deferred",
		withConnParams("n.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)&_txlock=deferred"))
}

func TestSQLiteStore_ConcurrentWriters(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "n.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	const workers, iterations = 32, 10
	var wg sync.WaitGroup
	errs := make(chan error, workers*iterations*2)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				user := fmt.Sprintf("user-%d", w)
				if err := s.SetAssigneeGroup(ctx, "oncall", []string{user, "lead"}); err != nil {
					errs <- err
				}
				_, err := s.AddNotification(ctx, Notification{
					User:       user,
					Message:    fmt.Sprintf("alarm %d", i),
					Timestamp:  baseTime,
					Expiration: baseTime.Add(time.Hour),
				})
				if err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	users, err := s.GetAssigneeGroup(ctx, "oncall")
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Contains(t, users, "lead")

	all, err := s.GetNotifications(ctx, Query{Now: baseTime})
	require.NoError(t, err)
	assert.Len(t, all, workers*iterations)
}

func TestNotificationExpiredWholeSeconds(t *testing.T) {
	n := Notification{Timestamp: baseTime, Expiration: baseTime}

	assert.False(t, n.Expired(baseTime))
	assert.False(t, n.Expired(baseTime.Add(999*time.Millisecond)), "visible for the rest of the expiration second")
	assert.True(t, n.Expired(baseTime.Add(time.Second)))
}
