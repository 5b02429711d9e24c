// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package assignee manages named groups of users that alerts can be assigned to.
package assignee
