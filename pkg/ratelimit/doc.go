// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package ratelimit provides token-bucket rate limiting middleware for gin,
// keyed by client IP for anonymous requests and by username once a request
// is authenticated. Idle buckets are evicted in the background.
package ratelimit
