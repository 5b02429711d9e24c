// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package dedup remembers which mails were already delivered so identical
// content sent to the same addresses is suppressed for a period of time.
package dedup
