// config_watcher.go: Hot reload of the host configuration file
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// HostConfigWatcher watches the host configuration file and delivers parsed
// updates to a callback. The callback receives only configurations that
// parsed and validated successfully; a broken edit is logged and the
// previous configuration stays in effect.
type HostConfigWatcher struct {
	configPath string
	onChange   func(HostConfig)
	logger     Logger

	watcher *argus.Watcher
	mutex   sync.Mutex
	running atomic.Bool

	current atomic.Pointer[HostConfig]
}

// NewHostConfigWatcher creates a watcher for the given configuration file.
// onChange is invoked from the watcher's goroutine; callers marshal to
// their own thread as needed.
func NewHostConfigWatcher(configPath string, onChange func(HostConfig), logger any) *HostConfigWatcher {
	return &HostConfigWatcher{
		configPath: configPath,
		onChange:   onChange,
		logger:     NewLogger(logger),
	}
}

// Start loads the initial configuration, delivers it, and begins watching
// for changes.
func (w *HostConfigWatcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.running.CompareAndSwap(false, true) {
		return NewConfigWatcherError("host config watcher is already running", nil)
	}

	initial, err := LoadHostConfig(w.configPath)
	if err != nil {
		w.running.Store(false)
		return err
	}
	w.current.Store(&initial)
	w.deliver(initial)

	w.watcher = argus.New(argus.Config{
		PollInterval:         2 * time.Second,
		MaxWatchedFiles:      1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, filepath string) {
			w.logger.Error("Host config watching error", "error", err, "file", filepath)
		},
	})

	if err := w.watcher.Watch(w.configPath, w.handleChange); err != nil {
		w.running.Store(false)
		return NewConfigWatcherError("failed to watch host config file", err)
	}
	if err := w.watcher.Start(); err != nil {
		w.running.Store(false)
		return NewConfigWatcherError("failed to start host config watcher", err)
	}

	w.logger.Info("Host config watcher started", "path", w.configPath)
	return nil
}

// Stop ends watching. Idempotent.
func (w *HostConfigWatcher) Stop() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.running.CompareAndSwap(true, false) {
		return nil
	}
	if w.watcher != nil {
		if err := w.watcher.Stop(); err != nil {
			return NewConfigWatcherError("failed to stop host config watcher", err)
		}
	}
	w.logger.Info("Host config watcher stopped", "path", w.configPath)
	return nil
}

// Current returns the last successfully loaded configuration.
func (w *HostConfigWatcher) Current() HostConfig {
	if config := w.current.Load(); config != nil {
		return *config
	}
	return DefaultHostConfig()
}

func (w *HostConfigWatcher) handleChange(event argus.ChangeEvent) {
	if event.IsDelete {
		w.logger.Warn("Host config file deleted, keeping previous configuration",
			"path", event.Path)
		return
	}

	config, err := LoadHostConfig(event.Path)
	if err != nil {
		w.logger.Error("Ignoring invalid host config update",
			"path", event.Path,
			"error", err)
		return
	}

	w.current.Store(&config)
	w.logger.Info("Host configuration reloaded", "path", event.Path)
	w.deliver(config)
}

func (w *HostConfigWatcher) deliver(config HostConfig) {
	if w.onChange == nil {
		return
	}
	defer withStackRecover(w.logger)()
	w.onChange(config)
}
