// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package client is the HTTP client notifyctl uses to talk to the
// notification service API.
package client
