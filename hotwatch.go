// hotwatch.go: Rediscovery trigger on module manifest changes
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"sync"
	"time"

	"github.com/agilira/argus"
	"github.com/agilira/go-timecache"
)

// rediscoverCooldown coalesces bursts of manifest changes (editors often
// write a file several times in quick succession) into a single refresh
// request.
const rediscoverCooldown = 2 * time.Second

// ModuleWatcher watches the manifest files of the most recent discovery
// pass and fires a refresh callback when one changes. The callback
// typically kicks off a new DiscoverAsync pass; the orchestrator's
// single-flight gate makes an overlapping request harmless.
type ModuleWatcher struct {
	onChange func()
	logger   Logger

	mutex     sync.Mutex
	watcher   *argus.Watcher
	lastFired time.Time
}

// NewModuleWatcher creates a watcher. onChange is invoked from the
// watcher's goroutine.
func NewModuleWatcher(onChange func(), logger any) *ModuleWatcher {
	return &ModuleWatcher{
		onChange: onChange,
		logger:   NewLogger(logger),
	}
}

// TrackResult replaces the watched file set with the manifests of the
// modules loaded by the given pass. Safe to call after every pass; the
// previous watcher, if any, is stopped first.
func (w *ModuleWatcher) TrackResult(result *DiscoveryResult) error {
	paths := make([]string, 0, len(result.Modules))
	for _, module := range result.Modules {
		if manifest := findManifest(module.SourcePath); manifest != "" {
			paths = append(paths, manifest)
		}
	}
	return w.track(paths)
}

func (w *ModuleWatcher) track(paths []string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.watcher != nil {
		if err := w.watcher.Stop(); err != nil {
			w.logger.Warn("Failed to stop previous manifest watcher", "error", err)
		}
		w.watcher = nil
	}
	if len(paths) == 0 {
		return nil
	}

	watcher := argus.New(argus.Config{
		PollInterval:         2 * time.Second,
		MaxWatchedFiles:      len(paths),
		OptimizationStrategy: argus.OptimizationSmallBatch,
		ErrorHandler: func(err error, filepath string) {
			w.logger.Error("Manifest watching error", "error", err, "file", filepath)
		},
	})

	for _, path := range paths {
		if err := watcher.Watch(path, w.handleChange); err != nil {
			return NewConfigWatcherError("failed to watch manifest", err)
		}
	}
	if err := watcher.Start(); err != nil {
		return NewConfigWatcherError("failed to start manifest watcher", err)
	}

	w.watcher = watcher
	w.logger.Info("Watching module manifests", "count", len(paths))
	return nil
}

// Stop ends watching. Idempotent.
func (w *ModuleWatcher) Stop() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Stop()
	w.watcher = nil
	if err != nil {
		return NewConfigWatcherError("failed to stop manifest watcher", err)
	}
	return nil
}

func (w *ModuleWatcher) handleChange(event argus.ChangeEvent) {
	w.mutex.Lock()
	now := timecache.CachedTime()
	fire := now.Sub(w.lastFired) >= rediscoverCooldown
	if fire {
		w.lastFired = now
	}
	w.mutex.Unlock()

	if !fire {
		return
	}

	w.logger.Info("Module manifest changed, requesting rediscovery", "path", event.Path)
	if w.onChange != nil {
		defer withStackRecover(w.logger)()
		w.onChange()
	}
}
