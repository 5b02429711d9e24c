// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package api exposes the notification service over HTTP with gin.
//
// Every route below /api except /api/version requires a bearer token that
// AuthHandler verifies against the JWKS of the authorization server. The
// controllers translate request bodies into calls on the mail dispatcher, the
// assignee group manager and the notification facade, and map their
// sentinel errors to status codes.
package api
