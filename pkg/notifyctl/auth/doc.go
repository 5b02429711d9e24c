// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package auth stores notifyctl bearer tokens in the OS keyring.
package auth
