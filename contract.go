// contract.go: The capability contract implemented by game modules
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

// EntryPointSymbol is the exported symbol the loader resolves in a compiled
// module. Its value must be a function of type EntryPointFunc.
const EntryPointSymbol = "NewGameModule"

// EntryPointFunc is the required signature of a module's entry point. The
// constructor takes no arguments; anything the module needs at runtime is
// delivered later through HandleMessage.
type EntryPointFunc = func() GameModule

// GameModule is the fixed capability contract every loaded module must
// satisfy. The host obtains declared metadata through Metadata and drives
// the running module through HandleMessage.
//
// Implementations are authored in independent module directories, compiled
// to shared objects by the build orchestrator, and instantiated by the
// dynamic loader. A module that panics during construction or returns
// metadata violating the player-count invariant is rejected at the loading
// boundary and never reaches the registry.
type GameModule interface {
	// Metadata returns the module's declared identity. Called once at load
	// time; the result is validated and then treated as immutable.
	Metadata() ModuleMetadata

	// HandleMessage delivers a host request to the running module. Request
	// and response are free-form key-value structures; a nil response with a
	// nil error means the module has nothing to say.
	HandleMessage(request map[string]any) (map[string]any, error)
}
