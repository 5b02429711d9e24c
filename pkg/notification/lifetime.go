// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package notification

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultLifetime applies when a notification is added without a lifetime.
const DefaultLifetime = 604800 * time.Second

const maxLifetimeSeconds = math.MaxInt64 / int64(time.Second)

func invalidLifetime(v any) error {
	return fmt.Errorf("%w: Message lifetime has to be a non decimal number, got %v", ErrValidation, v)
}

// ParseLifetime converts a lifetime in seconds as received from a caller.
// Integers, integral floats and strings holding a base-10 integer are
// accepted. nil yields DefaultLifetime.
func ParseLifetime(v any) (time.Duration, error) {
	var secs int64
	switch t := v.(type) {
	case nil:
		return DefaultLifetime, nil
	case int:
		secs = int64(t)
	case int32:
		secs = int64(t)
	case int64:
		secs = t
	case uint:
		if uint64(t) > math.MaxInt64 {
			return 0, invalidLifetime(v)
		}
		secs = int64(t)
	case uint32:
		secs = int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return 0, invalidLifetime(v)
		}
		secs = int64(t)
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) || math.Abs(t) > float64(maxLifetimeSeconds) {
			return 0, invalidLifetime(v)
		}
		secs = int64(t)
	case json.Number:
		n, err := strconv.ParseInt(t.String(), 10, 64)
		if err != nil {
			return 0, invalidLifetime(v)
		}
		secs = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, invalidLifetime(v)
		}
		secs = n
	default:
		return 0, invalidLifetime(v)
	}
	if secs < 0 {
		return 0, fmt.Errorf("%w: Message lifetime must not be negative, got %d", ErrValidation, secs)
	}
	if secs > maxLifetimeSeconds {
		return 0, invalidLifetime(v)
	}
	return time.Duration(secs) * time.Second, nil
}
