// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the notification service configuration from a YAML file.
//
// The file is read twice over: once into the typed Config used at startup, and
// once into a Tree that answers slash separated path lookups such as
// "Services/Notification/SMTP/Host" or "Registry/Users/alice/Email". The Manager
// keeps the latest Tree behind a lock and reloads it when the file changes, so
// values read through a Lookup follow edits without a restart.
package config
