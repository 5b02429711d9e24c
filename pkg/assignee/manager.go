// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package assignee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/telekom/notification-service/pkg/audit"
	"github.com/telekom/notification-service/pkg/identity"
	"github.com/telekom/notification-service/pkg/metrics"
	"github.com/telekom/notification-service/pkg/store"
)

// ErrValidation is returned for an empty group name.
var ErrValidation = errors.New("invalid assignee group request")

// Manager validates group requests and records their mutations.
type Manager struct {
	store    store.Store
	recorder audit.Recorder
	log      *zap.SugaredLogger
}

func NewManager(s store.Store, recorder audit.Recorder, log *zap.SugaredLogger) *Manager {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Manager{store: s, recorder: recorder, log: log.Named("assignee")}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: group name must not be empty", ErrValidation)
	}
	return name, nil
}

// normalizeUsers trims, drops empty entries and collapses duplicates.
func normalizeUsers(users []string) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		u = strings.TrimSpace(u)
		if u == "" || slices.Contains(out, u) {
			continue
		}
		out = append(out, u)
	}
	slices.Sort(out)
	return out
}

// SetAssigneeGroup creates the group or replaces its membership with users.
// An empty user list leaves an existing, empty group.
func (m *Manager) SetAssigneeGroup(ctx context.Context, actor, name string, users []string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	members := normalizeUsers(users)
	if err := m.store.SetAssigneeGroup(ctx, name, members); err != nil {
		m.log.Errorw("Failed to store assignee group", "group", name, "error", err)
		return fmt.Errorf("set assignee group %q: %w", name, err)
	}
	metrics.AssigneeGroupMutations.WithLabelValues("set").Inc()
	m.recorder.Record(audit.NewEvent(audit.EventAssigneeGroupSet, actor, name).With("members", members))
	m.log.Infow("Assignee group set", "group", name, "members", len(members), "actor", actor)
	return nil
}

// GetUsersInAssigneeGroup returns the sorted members or store.ErrGroupNotFound.
func (m *Manager) GetUsersInAssigneeGroup(ctx context.Context, name string) ([]string, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	users, err := m.store.GetAssigneeGroup(ctx, name)
	if err != nil {
		if !errors.Is(err, store.ErrGroupNotFound) {
			m.log.Errorw("Failed to load assignee group", "group", name, "error", err)
		}
		return nil, fmt.Errorf("get assignee group %q: %w", name, err)
	}
	return users, nil
}

// DeleteAssigneeGroup removes the group. Deleting a missing group succeeds.
func (m *Manager) DeleteAssigneeGroup(ctx context.Context, actor, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	existed, err := m.store.DeleteAssigneeGroup(ctx, name)
	if err != nil {
		m.log.Errorw("Failed to delete assignee group", "group", name, "error", err)
		return fmt.Errorf("delete assignee group %q: %w", name, err)
	}
	if !existed {
		m.log.Debugw("Assignee group to delete does not exist", "group", name)
		return nil
	}
	metrics.AssigneeGroupMutations.WithLabelValues("delete").Inc()
	m.recorder.Record(audit.NewEvent(audit.EventAssigneeGroupDeleted, actor, name))
	m.log.Infow("Assignee group deleted", "group", name, "actor", actor)
	return nil
}

func (m *Manager) GetAssigneeGroups(ctx context.Context) (map[string][]string, error) {
	groups, err := m.store.GetAssigneeGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignee groups: %w", err)
	}
	return groups, nil
}

// GetAssigneeGroupsForUser returns the groups containing user. Unprivileged
// callers always get their own groups, whatever user they ask for.
func (m *Manager) GetAssigneeGroupsForUser(ctx context.Context, id identity.Identity, user string) (map[string][]string, error) {
	target := identity.Narrow(strings.TrimSpace(user), id)
	if target != user {
		m.log.Debugw("Narrowed assignee group lookup to caller", "requested", user, "user", target)
	}
	groups, err := m.store.GetAssigneeGroupsForUser(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list assignee groups of %q: %w", target, err)
	}
	return groups, nil
}
