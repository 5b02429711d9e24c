// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/metrics"
)

const defaultReloadDebounce = 250 * time.Millisecond

// Manager holds the most recently loaded configuration and reloads it when the
// file on disk changes. It implements Lookup.
type Manager struct {
	path     string
	log      *zap.SugaredLogger
	debounce time.Duration

	mu       sync.RWMutex
	cfg      Config
	tree     Tree
	lastHash uint64
}

// NewManager creates a manager for path. Call Load before using it.
func NewManager(path string, log *zap.SugaredLogger) *Manager {
	if path == "" {
		path = DefaultPath
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{path: path, log: log.Named("config"), debounce: defaultReloadDebounce}
}

// Path returns the watched file.
func (m *Manager) Path() string { return m.path }

// Load reads and commits the file. A failed load keeps the previous state.
func (m *Manager) Load() error {
	_, err := m.reload()
	return err
}

// reload parses the file and commits it if the content changed.
func (m *Manager) reload() (bool, error) {
	content, err := os.ReadFile(m.path)
	if err != nil {
		return false, fmt.Errorf("trying to open config file %s: %w", m.path, err)
	}
	h := xxhash.Sum64(content)

	m.mu.RLock()
	unchanged := m.tree != nil && h == m.lastHash
	m.mu.RUnlock()
	if unchanged {
		return false, nil
	}

	cfg, tree, err := Parse(content)
	if err != nil {
		return false, fmt.Errorf("config file %s: %w", m.path, err)
	}

	m.mu.Lock()
	m.cfg = cfg
	m.tree = tree
	m.lastHash = h
	m.mu.Unlock()
	return true, nil
}

// Config returns the typed configuration of the last successful load.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Get resolves path against the current tree.
func (m *Manager) Get(path string) (string, bool) {
	m.mu.RLock()
	tree := m.tree
	m.mu.RUnlock()
	if tree == nil {
		return "", false
	}
	return tree.Get(path)
}

// Watch reloads the configuration whenever the file changes, until ctx is done.
// Events are debounced so editors writing in several steps cause one reload.
// The parent directory is watched so atomic renames are picked up.
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	dir := filepath.Dir(m.path)
	file := filepath.Base(m.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching config directory %s: %w", dir, err)
	}
	m.log.Debugw("Config watcher started", "dir", dir, "file", file)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(m.debounce, m.reloadAndLog)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.log.Warnw("Config watch error", "dir", dir, "error", err)
		}
	}
}

func (m *Manager) reloadAndLog() {
	changed, err := m.reload()
	if err != nil {
		metrics.ConfigReloads.WithLabelValues("error").Inc()
		m.log.Warnw("Config reload failed, keeping previous configuration", "path", m.path, "error", err)
		return
	}
	if !changed {
		m.log.Debugw("Config unchanged, skipping reload", "path", m.path)
		return
	}
	metrics.ConfigReloads.WithLabelValues("success").Inc()
	m.log.Infow("Config reloaded", "path", m.path)
}
