// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package cli parses the command-line flags of the notification service,
// each with an environment variable fallback.
package cli
