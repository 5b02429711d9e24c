// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package assignee

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/notification-service/pkg/audit"
	"github.com/telekom/notification-service/pkg/identity"
	"github.com/telekom/notification-service/pkg/store"
	"github.com/telekom/notification-service/pkg/system"
)

type eventRecorder struct {
	events []*audit.Event
}

func (r *eventRecorder) Record(e *audit.Event) { r.events = append(r.events, e) }

func newTestManager(t *testing.T) (*Manager, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	return NewManager(store.NewMemoryStore(), rec, system.NewTestLogger(t)), rec
}

func TestSetAndGetAssigneeGroup(t *testing.T) {
	ctx := context.Background()
	m, rec := newTestManager(t)

	require.NoError(t, m.SetAssigneeGroup(ctx, "admin", " oncall ", []string{"bob", " alice", "", "bob"}))
	users, err := m.GetUsersInAssigneeGroup(ctx, "oncall")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, users)

	require.NoError(t, m.SetAssigneeGroup(ctx, "admin", "oncall", []string{"carol"}))
	users, err = m.GetUsersInAssigneeGroup(ctx, "oncall")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, users, "membership is replaced, not merged")

	require.Len(t, rec.events, 2)
	assert.Equal(t, audit.EventAssigneeGroupSet, rec.events[0].Type)
	assert.Equal(t, "admin", rec.events[0].Actor)
	assert.Equal(t, "oncall", rec.events[0].Target)
}

func TestSetAssigneeGroup_EmptyMembers(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	require.NoError(t, m.SetAssigneeGroup(ctx, "admin", "empty", nil))
	users, err := m.GetUsersInAssigneeGroup(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, users)

	groups, err := m.GetAssigneeGroups(ctx)
	require.NoError(t, err)
	assert.Contains(t, groups, "empty")
}

func TestSetAssigneeGroup_InvalidName(t *testing.T) {
	m, rec := newTestManager(t)
	err := m.SetAssigneeGroup(context.Background(), "admin", "  ", []string{"alice"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, rec.events)
}

func TestGetUsersInAssigneeGroup_Missing(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.GetUsersInAssigneeGroup(context.Background(), "ghosts")
	assert.ErrorIs(t, err, store.ErrGroupNotFound)
}

func TestDeleteAssigneeGroup(t *testing.T) {
	ctx := context.Background()
	m, rec := newTestManager(t)

	require.NoError(t, m.SetAssigneeGroup(ctx, "admin", "oncall", []string{"alice"}))
	require.NoError(t, m.DeleteAssigneeGroup(ctx, "admin", "oncall"))
	_, err := m.GetUsersInAssigneeGroup(ctx, "oncall")
	assert.ErrorIs(t, err, store.ErrGroupNotFound)

	require.NoError(t, m.DeleteAssigneeGroup(ctx, "admin", "oncall"), "deleting a missing group succeeds")
	require.Len(t, rec.events, 2, "only the real deletion is audited")
	assert.Equal(t, audit.EventAssigneeGroupDeleted, rec.events[1].Type)
}

func TestGetAssigneeGroupsForUser(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	require.NoError(t, m.SetAssigneeGroup(ctx, "admin", "oncall", []string{"alice", "bob"}))
	require.NoError(t, m.SetAssigneeGroup(ctx, "admin", "dba", []string{"bob"}))
	require.NoError(t, m.SetAssigneeGroup(ctx, "admin", "net", []string{"carol"}))

	tests := []struct {
		name      string
		caller    identity.Identity
		requested string
		want      map[string][]string
	}{
		{
			name:      "privileged caller reads other user",
			caller:    identity.Identity{Username: "root", Properties: []string{identity.PropertyAlarmsManagement}},
			requested: "bob",
			want:      map[string][]string{"oncall": {"alice", "bob"}, "dba": {"bob"}},
		},
		{
			name:      "unprivileged caller is narrowed to self",
			caller:    identity.Identity{Username: "alice"},
			requested: "bob",
			want:      map[string][]string{"oncall": {"alice", "bob"}},
		},
		{
			name:      "user without groups",
			caller:    identity.Identity{Username: "dave"},
			requested: "dave",
			want:      map[string][]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.GetAssigneeGroupsForUser(ctx, tt.caller, tt.requested)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), len(got))
			for name, members := range tt.want {
				assert.Equal(t, members, got[name])
			}
		})
	}
}
