// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package notification implements the lifecycle of per-user notifications on
// top of a store.Store: creation with an expiry, paged queries, seen flags,
// removal and the purge of expired entries.
//
// Every user-scoped operation narrows the target user through
// identity.Narrow before touching the store, so unprivileged callers only
// ever act on their own notifications.
package notification
