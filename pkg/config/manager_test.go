// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestManagerLoadAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Services:\n  Notification:\n    SMTP:\n      Host: a.example.com\nmailQueue:\n  size: 5\n"), 0o600))

	m := NewManager(path, zaptest.NewLogger(t).Sugar())
	_, ok := m.Get("Services/Notification/SMTP/Host")
	assert.False(t, ok, "nothing is visible before Load")

	require.NoError(t, m.Load())
	host, ok := m.Get("Services/Notification/SMTP/Host")
	assert.True(t, ok)
	assert.Equal(t, "a.example.com", host)
	assert.Equal(t, 5, m.Config().MailQueue.Size)
	assert.Equal(t, path, m.Path())
}

func TestManagerFailedReloadKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Key: one\n"), 0o600))

	m := NewManager(path, nil)
	require.NoError(t, m.Load())

	require.NoError(t, os.WriteFile(path, []byte("Key: [broken\n"), 0o600))
	require.Error(t, m.Load())

	v, ok := m.Get("Key")
	assert.True(t, ok)
	assert.Equal(t, "one", v)
}

func TestManagerReloadSkipsUnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Key: one\n"), 0o600))

	m := NewManager(path, nil)
	changed, err := m.reload()
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = m.reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestManagerWatchPicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Services:\n  Notification:\n    SMTP:\n      Host: old.example.com\n"), 0o600))

	m := NewManager(path, zaptest.NewLogger(t).Sugar())
	m.debounce = 10 * time.Millisecond
	require.NoError(t, m.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// the watcher registers asynchronously; keep rewriting until the change lands
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("Services:\n  Notification:\n    SMTP:\n      Host: new.example.com\n"), 0o600)
		host, _ := m.Get("Services/Notification/SMTP/Host")
		return host == "new.example.com"
	}, 5*time.Second, 50*time.Millisecond)
}
