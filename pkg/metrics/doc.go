// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics defines the Prometheus metrics of the notification service:
// mail delivery and dedup, the deferred mail queue, notification lifecycle,
// assignee group writes, audit delivery and the HTTP API.
package metrics
