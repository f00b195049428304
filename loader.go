// loader.go: Dynamic loading of compiled module entry points
//
// The loader is the isolation boundary between the host and arbitrary
// module code: every failure mode of a freshly built module -- unloadable
// artifact, missing symbol, wrong signature, panicking constructor,
// contract-violating metadata -- is caught here and converted into a
// failure record, never propagated as a fault that could abort a pass.
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"strings"

	"github.com/agilira/go-timecache"
)

// EntryPointOpener resolves a compiled artifact to its entry-point
// constructor. The production implementation opens shared objects; tests
// inject fakes so loading semantics can be exercised without a compiler.
type EntryPointOpener interface {
	Open(artifactPath string) (EntryPointFunc, error)
}

// ModuleLoader instantiates compiled modules against the GameModule
// contract and extracts their declared metadata.
type ModuleLoader struct {
	opener EntryPointOpener
	logger Logger
}

// NewModuleLoader creates a loader. A nil opener gets the shared-object
// opener backed by the runtime's plugin support.
func NewModuleLoader(opener EntryPointOpener, logger Logger) *ModuleLoader {
	if logger == nil {
		logger = DefaultLogger()
	}
	if opener == nil {
		opener = sharedObjectOpener{}
	}
	return &ModuleLoader{opener: opener, logger: logger}
}

// Load resolves and instantiates the candidate's compiled entry point.
// Callers must only pass candidates whose build succeeded or whose
// artifact was already fresh.
func (l *ModuleLoader) Load(candidate ModuleCandidate) (*LoadedModule, error) {
	artifact := ArtifactPath(candidate.Path)
	if !fileExists(artifact) {
		return nil, NewArtifactOpenError(artifact, nil)
	}

	entryPoint, err := l.opener.Open(artifact)
	if err != nil {
		return nil, err
	}

	instance, err := l.construct(candidate, entryPoint)
	if err != nil {
		return nil, err
	}

	metadata, err := l.extractMetadata(candidate, instance)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Module loaded",
		"module", metadata.Name,
		"version", metadata.Version,
		"source", candidate.Path)

	return &LoadedModule{
		Metadata:     metadata,
		SourcePath:   candidate.Path,
		ArtifactPath: artifact,
		LoadedAt:     timecache.CachedTime(),
		Instance:     instance,
	}, nil
}

// construct calls the entry point behind panic isolation.
func (l *ModuleLoader) construct(candidate ModuleCandidate, entryPoint EntryPointFunc) (GameModule, error) {
	var instance GameModule
	recovered, stack := capturePanic(func() {
		instance = entryPoint()
	})
	if recovered != nil {
		l.logger.Error("Module entry point panicked during construction",
			"candidate", candidate.Name,
			"panic", recovered,
			"stack", stack)
		return nil, NewEntryPointPanicError(candidate.Name, recovered)
	}
	if instance == nil {
		return nil, NewContractViolationError(candidate.Name, "entry point returned a nil module")
	}
	return instance, nil
}

// extractMetadata obtains and validates the instance's declared metadata,
// also behind panic isolation: Metadata is module code too.
func (l *ModuleLoader) extractMetadata(candidate ModuleCandidate, instance GameModule) (ModuleMetadata, error) {
	var metadata ModuleMetadata
	recovered, stack := capturePanic(func() {
		metadata = instance.Metadata()
	})
	if recovered != nil {
		l.logger.Error("Module panicked while reporting metadata",
			"candidate", candidate.Name,
			"panic", recovered,
			"stack", stack)
		return ModuleMetadata{}, NewEntryPointPanicError(candidate.Name, recovered)
	}

	if strings.TrimSpace(metadata.Name) == "" {
		return ModuleMetadata{}, NewContractViolationError(candidate.Name, "module name is empty")
	}
	if err := validateModuleName(metadata.Name); err != nil {
		return ModuleMetadata{}, NewContractViolationError(candidate.Name, err.Error())
	}
	if metadata.MinPlayers <= 0 {
		return ModuleMetadata{}, NewContractViolationError(candidate.Name, "minPlayers must be positive")
	}
	if metadata.MaxPlayers < metadata.MinPlayers {
		return ModuleMetadata{}, NewContractViolationError(candidate.Name, "minPlayers exceeds maxPlayers")
	}

	return metadata, nil
}
