// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package output renders notifyctl results as tables, JSON or YAML.
package output
