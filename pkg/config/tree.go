// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

// Lookup resolves slash separated configuration paths to scalar values.
type Lookup interface {
	Get(path string) (string, bool)
}

// LookupFunc adapts a plain function to Lookup.
type LookupFunc func(path string) (string, bool)

func (f LookupFunc) Get(path string) (string, bool) { return f(path) }

// Tree is the raw configuration document as nested maps with string keys.
type Tree map[string]any

func parseTree(content []byte) (Tree, error) {
	var raw map[interface{}]interface{}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshaling YAML tree: %w", err)
	}
	return normalize(raw), nil
}

func normalize(in map[interface{}]interface{}) Tree {
	out := make(Tree, len(in))
	for k, v := range in {
		out[fmt.Sprint(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) any {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		return normalize(t)
	case []interface{}:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = normalizeValue(item)
		}
		return items
	default:
		return t
	}
}

func splitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (t Tree) node(path string) (any, bool) {
	var cur any = t
	for _, part := range splitPath(path) {
		m, ok := cur.(Tree)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Get returns the scalar at path. Sections, lists and null values are not found.
func (t Tree) Get(path string) (string, bool) {
	v, ok := t.node(path)
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case Tree, []any:
		return "", false
	case string:
		return s, true
	default:
		return fmt.Sprint(s), true
	}
}

// Section returns the sub tree at path, or nil if path is not a section.
func (t Tree) Section(path string) Tree {
	v, ok := t.node(path)
	if !ok {
		return nil
	}
	sub, _ := v.(Tree)
	return sub
}
