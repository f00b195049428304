// registry.go: In-memory registry of loaded game modules
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"sync"
)

// ModuleRegistry holds the set of modules produced by one discovery pass,
// keyed by declared name. A new pass replaces the entire set atomically:
// callers can never observe a half-updated module list. All reads hand out
// copies of the slice bookkeeping; the *LoadedModule values themselves are
// immutable after construction.
type ModuleRegistry struct {
	mu      sync.RWMutex
	byName  map[string]*LoadedModule
	ordered []*LoadedModule
	logger  Logger
}

// NewModuleRegistry creates an empty registry.
func NewModuleRegistry(logger Logger) *ModuleRegistry {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &ModuleRegistry{
		byName: make(map[string]*LoadedModule),
		logger: logger,
	}
}

// Replace swaps in the module set of a completed pass, discarding whatever
// the previous pass loaded. There is no incremental merge at this layer.
func (r *ModuleRegistry) Replace(modules []*LoadedModule) {
	byName := make(map[string]*LoadedModule, len(modules))
	ordered := make([]*LoadedModule, 0, len(modules))
	for _, module := range modules {
		if _, dup := byName[module.Name()]; dup {
			// Insertion sets are deduplicated upstream; guard anyway so a
			// duplicate can never shadow the first-discovered instance.
			continue
		}
		byName[module.Name()] = module
		ordered = append(ordered, module)
	}

	r.mu.Lock()
	r.byName = byName
	r.ordered = ordered
	r.mu.Unlock()

	r.logger.Info("Module registry replaced", "modules", len(ordered))
}

// Lookup returns the module with the given declared name, or nil.
func (r *ModuleRegistry) Lookup(name string) *LoadedModule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Contains reports whether a module with the given name is registered.
func (r *ModuleRegistry) Contains(name string) bool {
	return r.Lookup(name) != nil
}

// Snapshot returns the registered modules in discovery order. The returned
// slice is a copy.
func (r *ModuleRegistry) Snapshot() []*LoadedModule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*LoadedModule, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns the registered module names in discovery order.
func (r *ModuleRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.ordered))
	for i, module := range r.ordered {
		names[i] = module.Name()
	}
	return names
}

// Len returns the number of registered modules.
func (r *ModuleRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}
