// freshness.go: Build freshness check for compiled module output
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"path/filepath"
	"strings"
)

// Conventional locations inside a candidate directory.
const (
	// BuildOutputDir is the subdirectory holding compiled output. Its name
	// is part of the default directory filter, so a build tree can never be
	// mistaken for a candidate.
	BuildOutputDir = "build"

	// ArtifactFile is the compiled shared object produced by the build step.
	ArtifactFile = "module.so"
)

// ArtifactPath returns the conventional compiled-output location for a
// candidate directory.
func ArtifactPath(candidateDir string) string {
	return filepath.Join(candidateDir, BuildOutputDir, ArtifactFile)
}

// FreshnessChecker decides whether a candidate's compiled output is stale
// relative to its sources. This check is purely an optimization: skipping it
// never changes which modules a pass produces, only how long the pass takes.
type FreshnessChecker struct {
	logger Logger
}

// NewFreshnessChecker creates a freshness checker.
func NewFreshnessChecker(logger Logger) *FreshnessChecker {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &FreshnessChecker{logger: logger}
}

// NeedsBuild reports whether the candidate must be (re)built. A missing
// artifact always needs a build. Otherwise the artifact is stale when any
// source or manifest file in the candidate directory is newer than it.
func (f *FreshnessChecker) NeedsBuild(candidate ModuleCandidate) bool {
	artifact := ArtifactPath(candidate.Path)
	built := modTime(artifact)
	if built.IsZero() {
		return true
	}

	newestSource := newestModTime(candidate.Path, isModuleInput)
	stale := newestSource.After(built)
	if stale {
		f.logger.Debug("Compiled output is stale",
			"candidate", candidate.Name,
			"artifact", artifact)
	}
	return stale
}

// isModuleInput reports whether a file inside the candidate directory feeds
// the build: Go sources and the metadata manifest.
func isModuleInput(name string) bool {
	if strings.HasSuffix(name, ".go") {
		return true
	}
	for _, manifest := range manifestFileNames {
		if name == manifest {
			return true
		}
	}
	return false
}
