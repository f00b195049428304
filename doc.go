// doc.go: Package documentation for modhost
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

// Package modhost discovers, builds, and loads independently-authored game
// modules from a filesystem directory and exposes them to a host application
// behind a fixed capability contract.
//
// A module lives in its own subdirectory of the modules root and consists of
// an entry source file (module.go), a metadata manifest (module.json or
// module.yaml), and, once built, a compiled shared object at build/module.so.
// A discovery pass scans the root, validates each candidate, rebuilds stale
// candidates through an external build step, loads the compiled entry point,
// and registers the result:
//
//	config := modhost.DefaultHostConfig()
//	config.ModulesDir = "/opt/games/modules"
//	orch := modhost.NewOrchestrator(config, logger)
//	orch.OnProgress(func(ev modhost.ProgressEvent) { ui.ShowStatus(ev.Message) })
//	result, err := orch.Discover(ctx)
//
// Every per-candidate failure (missing files, failed build, broken entry
// point) is contained at its stage and surfaced through the pass's failure
// records; only an unavailable modules root or an external cancellation
// aborts a pass. Discovery always runs off the caller's UI thread and never
// more than one pass is in flight at a time.
package modhost
