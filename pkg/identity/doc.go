// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package identity describes the authenticated caller and narrows requests
// to the caller's own data unless they hold the AlarmsManagement property.
//
// Narrowing never fails: an unprivileged request for another user's data is
// silently rewritten to target the caller.
package identity
