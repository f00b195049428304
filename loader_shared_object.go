// loader_shared_object.go: Shared-object entry point resolution
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"plugin"
)

// sharedObjectOpener is the production EntryPointOpener. It opens the
// compiled artifact with the runtime's plugin support and resolves the
// fixed EntryPointSymbol.
//
// Module authors compile against this package and export
//
//	func NewGameModule() modhost.GameModule { ... }
//
// so the symbol's type identity matches EntryPointFunc exactly.
type sharedObjectOpener struct{}

func (sharedObjectOpener) Open(artifactPath string) (EntryPointFunc, error) {
	p, err := plugin.Open(artifactPath)
	if err != nil {
		return nil, NewArtifactOpenError(artifactPath, err)
	}

	sym, err := p.Lookup(EntryPointSymbol)
	if err != nil {
		return nil, NewSymbolMissingError(EntryPointSymbol, err)
	}

	entryPoint, ok := sym.(EntryPointFunc)
	if !ok {
		return nil, NewSymbolMissingError(EntryPointSymbol, nil)
	}
	return entryPoint, nil
}
