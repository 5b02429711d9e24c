// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"sort"
	"strings"

	"github.com/telekom/notification-service/pkg/config"
)

// Resolver derives identity properties from token claims.
type Resolver struct {
	propertiesClaim string
	groupProperties map[string][]string
}

func NewResolver(cfg config.Authorization) *Resolver {
	claim := cfg.PropertiesClaim
	if claim == "" {
		claim = "properties"
	}
	return &Resolver{propertiesClaim: claim, groupProperties: cfg.GroupProperties}
}

// Properties returns the sorted, de-duplicated properties granted by claims:
// those listed in the properties claim plus those mapped from groups.
func (r *Resolver) Properties(claims map[string]interface{}, groups []string) []string {
	set := map[string]struct{}{}
	for _, p := range stringList(claims[r.propertiesClaim]) {
		set[p] = struct{}{}
	}
	for _, g := range groups {
		for _, p := range r.groupProperties[g] {
			set[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// stringList accepts a JSON array of strings or a single space or comma
// separated string, as identity providers emit both.
func stringList(v interface{}) []string {
	var out []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		out = strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ' ' })
	}
	return out
}
