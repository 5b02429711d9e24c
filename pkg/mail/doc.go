// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package mail delivers email over SMTP.
//
// The Dispatcher suppresses a mail whose recipients, subject and body match
// one delivered during the last 24 hours, resolves SMTP settings from the
// live configuration on every call and hands the message to a Transport
// exactly once. The Queue runs deferred notification mails through the same
// Dispatcher in the background.
package mail
