// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/telekom/notification-service/pkg/store"
	"github.com/telekom/notification-service/pkg/system"
)

// PropertyAlarmsManagement allows acting on behalf of any user.
const PropertyAlarmsManagement = "AlarmsManagement"

// ErrNoIdentity is returned when a request carries no authenticated user.
var ErrNoIdentity = errors.New("no authenticated identity in request")

// Identity is the caller as established by authentication.
type Identity struct {
	Username   string   `json:"username"`
	Properties []string `json:"properties"`
}

// Has reports whether the identity holds property.
func (i Identity) Has(property string) bool {
	return slices.Contains(i.Properties, property)
}

// Privileged reports whether the identity may act for other users.
func (i Identity) Privileged() bool {
	return i.Has(PropertyAlarmsManagement)
}

// Narrow returns the user a request may target: requested for privileged
// callers, the caller's own username otherwise.
func Narrow(requested string, id Identity) string {
	if id.Privileged() {
		return requested
	}
	return id.Username
}

// NarrowFilter returns a copy of filter whose user key is pinned to the caller
// for unprivileged identities. Any caller supplied user values are discarded.
func NarrowFilter(filter store.Filter, id Identity) store.Filter {
	out := filter.Clone()
	if id.Privileged() {
		return out
	}
	if out == nil {
		out = store.Filter{}
	}
	out[store.FilterUser] = []string{id.Username}
	return out
}

// FromContext reads the identity stored by the authentication middleware.
func FromContext(c *gin.Context) (Identity, error) {
	if c == nil {
		return Identity{}, ErrNoIdentity
	}
	username := c.GetString(system.UsernameKey)
	if username == "" {
		return Identity{}, ErrNoIdentity
	}
	return Identity{
		Username:   username,
		Properties: c.GetStringSlice(system.PropertiesKey),
	}, nil
}

// IntoContext stores id the way FromContext expects it.
func IntoContext(c *gin.Context, id Identity) {
	c.Set(system.UsernameKey, id.Username)
	c.Set(system.PropertiesKey, id.Properties)
}
