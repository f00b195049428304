// validator.go: Structural validation of module candidates
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"fmt"
	"path/filepath"
)

// EntrySourceFile is the required entry source file inside a candidate
// directory.
const EntrySourceFile = "module.go"

// StructuralValidator checks that a candidate directory has the minimum
// required files to be treated as a module unit: the entry source and a
// metadata manifest. It is side-effect-free and never touches the build
// system.
type StructuralValidator struct {
	logger Logger

	// precheck optionally runs the best-effort source sanity check. It is
	// advisory only and strictly weaker than the build step's exit code;
	// its findings are logged, never used to reject a candidate.
	precheck bool
}

// NewStructuralValidator creates a validator. When precheck is true, entry
// sources additionally get a delimiter-balance sanity check whose findings
// are logged as warnings.
func NewStructuralValidator(precheck bool, logger Logger) *StructuralValidator {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &StructuralValidator{logger: logger, precheck: precheck}
}

// Validate inspects one candidate and reports every missing requirement,
// not just the first, so failure records carry an actionable reason.
//
// A present-but-broken manifest counts as a missing requirement: metadata
// that cannot be parsed or violates the player-count invariant would fail
// at the loading boundary anyway, and catching it here avoids a pointless
// build.
func (v *StructuralValidator) Validate(candidate ModuleCandidate) ValidationOutcome {
	var missing []string

	entryPath := filepath.Join(candidate.Path, EntrySourceFile)
	if !fileExists(entryPath) {
		missing = append(missing, fmt.Sprintf("entry source %q", EntrySourceFile))
	} else if v.precheck {
		if err := precheckSource(entryPath); err != nil {
			v.logger.Warn("Entry source failed best-effort pre-check",
				"candidate", candidate.Name,
				"error", err)
		}
	}

	manifestPath := findManifest(candidate.Path)
	if manifestPath == "" {
		missing = append(missing, fmt.Sprintf("metadata manifest (one of %v)", manifestFileNames))
	} else {
		if manifest, err := ParseManifest(manifestPath); err != nil {
			missing = append(missing, fmt.Sprintf("parseable manifest: %v", err))
		} else if err := manifest.Validate(); err != nil {
			missing = append(missing, fmt.Sprintf("valid manifest metadata: %v", err))
		}
	}

	outcome := ValidationOutcome{
		Candidate:           candidate,
		IsValid:             len(missing) == 0,
		MissingRequirements: missing,
	}

	if !outcome.IsValid {
		v.logger.Debug("Candidate failed structural validation",
			"candidate", candidate.Name,
			"missing", missing)
	}

	return outcome
}
