// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package store persists assignee groups and per-user notifications.
//
// Two implementations exist: MemoryStore for tests and throwaway setups, and
// SQLiteStore backed by sqlx and the pure Go modernc SQLite driver. Both hide
// expired notifications from queries; PurgeExpiredNotifications removes them.
package store
