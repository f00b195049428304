// types.go: Common data types for the module discovery pipeline
//
// This file contains the shared data model used throughout the discovery
// pipeline. Every entity here is created fresh on each discovery pass and,
// with the exception of the failure tracker's accumulation list and the
// registry's insertion set, is never mutated after construction.
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"time"
)

// ModuleCandidate identifies a subdirectory of the modules root that might
// contain a valid game module. Candidates are produced by the scanner and
// discarded once the pipeline resolves them to either a LoadedModule or a
// FailureRecord.
type ModuleCandidate struct {
	// Path is the absolute path of the candidate directory.
	Path string `json:"path"`

	// Name is the directory base name, used as the candidate identity in
	// progress events and failure records until metadata is available.
	Name string `json:"name"`
}

// ValidationOutcome reports whether a candidate has the minimum required
// files to be treated as a module unit. MissingRequirements lists every
// missing requirement, not just the first, so the caller can surface a
// precise, actionable reason.
type ValidationOutcome struct {
	Candidate           ModuleCandidate `json:"candidate"`
	IsValid             bool            `json:"is_valid"`
	MissingRequirements []string        `json:"missing_requirements,omitempty"`
}

// BuildOutcome captures the result of the external build step for one
// candidate. A candidate with Succeeded == false never reaches the loader.
type BuildOutcome struct {
	Candidate ModuleCandidate `json:"candidate"`
	Succeeded bool            `json:"succeeded"`
	Skipped   bool            `json:"skipped"` // fresh output, build not invoked
	ExitCode  int             `json:"exit_code"`
	Log       string          `json:"log,omitempty"`
}

// ModuleMetadata is the metadata a game module declares about itself,
// obtained from the live instance after loading and pre-declared in the
// candidate's manifest file.
//
// Invariant for a registered module: Name is non-empty and
// 0 < MinPlayers <= MaxPlayers.
type ModuleMetadata struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	MinPlayers  int    `json:"min_players" yaml:"min_players"`
	MaxPlayers  int    `json:"max_players" yaml:"max_players"`
}

// LoadedModule is a successfully loaded game module. It is owned exclusively
// by the registry once created; Instance is the live entry point used for
// the remainder of the session.
type LoadedModule struct {
	Metadata ModuleMetadata `json:"metadata"`

	// SourcePath is the candidate directory the module was loaded from.
	SourcePath string `json:"source_path"`

	// ArtifactPath is the compiled shared object that was opened.
	ArtifactPath string `json:"artifact_path"`

	// LoadedAt records when instantiation completed.
	LoadedAt time.Time `json:"loaded_at"`

	// Instance is the live plugin entry point. Never nil for a module that
	// reached the registry.
	Instance GameModule `json:"-"`
}

// Name returns the module's declared display name.
func (m *LoadedModule) Name() string { return m.Metadata.Name }

// FailureStage identifies the pipeline stage that rejected a candidate.
type FailureStage string

const (
	StageValidation FailureStage = "validation"
	StageBuild      FailureStage = "build"
	StageLoad       FailureStage = "load"
)

// FailureRecord describes one candidate rejected by one pipeline stage.
// Records accumulate in the FailureTracker and are drained exactly once per
// pass by whichever caller reports them upstream.
type FailureRecord struct {
	CandidateName string       `json:"candidate_name"`
	Stage         FailureStage `json:"stage"`
	Reason        string       `json:"reason"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// DiscoveryResult is the terminal output of one full discovery pass. It is
// always produced, even when zero modules are found: an empty module list
// with a nil Err and no failures means the directory was legitimately empty,
// which the UI layer must distinguish from an unreadable root (Err set) and
// from a pass where every candidate failed (Failures non-empty).
type DiscoveryResult struct {
	// PassID correlates this result with the progress events of its pass.
	PassID string `json:"pass_id"`

	// Modules are the successfully loaded modules, in listing order.
	Modules []*LoadedModule `json:"modules"`

	// Failures are the per-candidate rejections drained from the tracker.
	Failures []FailureRecord `json:"failures"`

	// CandidateCount is the number of candidates that survived filtering.
	CandidateCount int `json:"candidate_count"`

	// Aborted is true when the pass was cancelled before completing; Modules
	// and Failures then hold whatever had been resolved up to that point.
	Aborted bool `json:"aborted"`

	// Err is set only for pass-fatal conditions (unavailable root). Never
	// set for per-candidate failures.
	Err error `json:"-"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// DiscoveryState is the coarse state of the discovery orchestrator's state
// machine. States advance strictly forward within a pass; Aborted is
// terminal and reachable from any state.
type DiscoveryState int

const (
	StateIdle DiscoveryState = iota
	StateScanning
	StateValidating
	StateBuilding
	StateLoading
	StateFinalizing
	StateDone
	StateAborted
)

// String returns a human-readable representation of the state.
func (s DiscoveryState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateValidating:
		return "validating"
	case StateBuilding:
		return "building"
	case StateLoading:
		return "loading"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// StepIndex returns the ordinal of the state within a pass, used by UI
// progress displays.
func (s DiscoveryState) StepIndex() int { return int(s) }

// ProgressEvent is one ordered progress notification emitted by the
// orchestrator. Events for a given candidate are emitted strictly after
// that candidate's previous-stage event.
type ProgressEvent struct {
	PassID    string         `json:"pass_id"`
	Step      int            `json:"step"`
	State     DiscoveryState `json:"state"`
	Candidate string         `json:"candidate,omitempty"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
}
