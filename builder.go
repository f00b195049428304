// builder.go: External build step invocation for module candidates
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"context"
	"os/exec"
	"time"
)

// DefaultBuildTimeout bounds one external build invocation. The build step
// is the only pipeline stage allowed to block for more than a few hundred
// milliseconds, and the bound guarantees a wedged toolchain cannot hang a
// pass forever.
const DefaultBuildTimeout = 2 * time.Minute

// maxBuildLogExcerpt limits how much captured build output is kept on a
// failure record. The tail is kept: compilers print the interesting part
// last.
const maxBuildLogExcerpt = 4096

// BuildRunner abstracts the external build tool. The pipeline never knows
// the tool's command-line syntax; it only sees an exit code and the
// combined output text.
type BuildRunner interface {
	// Run executes one build scoped to the candidate directory. It returns
	// the process exit code and captured combined output. err is reserved
	// for invocation-level problems (tool not found, context ended); a
	// compile failure is exitCode != 0 with err == nil.
	Run(ctx context.Context, candidate ModuleCandidate) (exitCode int, output string, err error)
}

// CommandRunner is the default BuildRunner: it invokes a configured command
// line as a subprocess in the candidate directory with output captured, not
// streamed.
type CommandRunner struct {
	command []string
	logger  Logger
}

// DefaultBuildCommand compiles the candidate's sources into the
// conventional shared-object artifact.
func DefaultBuildCommand() []string {
	return []string{"go", "build", "-buildmode=plugin", "-o", ArtifactPath("."), "."}
}

// NewCommandRunner creates a runner for the given command line. An empty
// command falls back to DefaultBuildCommand.
func NewCommandRunner(command []string, logger Logger) *CommandRunner {
	if len(command) == 0 {
		command = DefaultBuildCommand()
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	return &CommandRunner{command: command, logger: logger}
}

// Run implements BuildRunner. Context cancellation kills the subprocess.
func (r *CommandRunner) Run(ctx context.Context, candidate ModuleCandidate) (int, string, error) {
	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...) // #nosec G204 -- command comes from host configuration
	cmd.Dir = candidate.Path

	r.logger.Debug("Invoking build step",
		"candidate", candidate.Name,
		"command", r.command)

	output, err := cmd.CombinedOutput()
	if err == nil {
		return 0, string(output), nil
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		// Context expiry also surfaces as a killed process; report it as an
		// invocation error so the caller can tell timeout from compile
		// failure.
		if ctx.Err() != nil {
			return -1, string(output), ctx.Err()
		}
		return exitErr.ExitCode(), string(output), nil
	}

	return -1, string(output), err
}

// BuildOrchestrator drives the external build step for one candidate at a
// time, capturing success or failure without ever aborting the surrounding
// pass: one candidate's broken build must never prevent discovery of the
// others.
type BuildOrchestrator struct {
	runner  BuildRunner
	timeout time.Duration
	logger  Logger
}

// NewBuildOrchestrator creates a build orchestrator. A nil runner gets the
// default CommandRunner; a non-positive timeout falls back to
// DefaultBuildTimeout.
func NewBuildOrchestrator(runner BuildRunner, timeout time.Duration, logger Logger) *BuildOrchestrator {
	if logger == nil {
		logger = DefaultLogger()
	}
	if runner == nil {
		runner = NewCommandRunner(nil, logger)
	}
	if timeout <= 0 {
		timeout = DefaultBuildTimeout
	}
	return &BuildOrchestrator{runner: runner, timeout: timeout, logger: logger}
}

// Build runs the external build step for a validated candidate. The
// returned error is non-nil only when the surrounding pass was cancelled;
// every build problem, including a timeout, is contained in the outcome.
func (b *BuildOrchestrator) Build(ctx context.Context, candidate ModuleCandidate) (BuildOutcome, error) {
	buildCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	exitCode, output, err := b.runner.Run(buildCtx, candidate)
	elapsed := time.Since(start)

	outcome := BuildOutcome{
		Candidate: candidate,
		ExitCode:  exitCode,
		Log:       tailExcerpt(output, maxBuildLogExcerpt),
	}

	switch {
	case ctx.Err() != nil:
		// External cancellation: the subprocess has been killed; the pass
		// must stop here.
		return outcome, NewCancelledError(ctx.Err())

	case buildCtx.Err() != nil:
		outcome.Log = NewBuildTimeoutError(candidate.Name, b.timeout).Error() + "\n" + outcome.Log
		b.logger.Warn("Build timed out",
			"candidate", candidate.Name,
			"timeout", b.timeout)
		return outcome, nil

	case err != nil:
		outcome.Log = err.Error()
		b.logger.Error("Build step could not be invoked",
			"candidate", candidate.Name,
			"error", err)
		return outcome, nil

	case exitCode != 0:
		b.logger.Warn("Build failed",
			"candidate", candidate.Name,
			"exit_code", exitCode,
			"elapsed", elapsed)
		return outcome, nil
	}

	outcome.Succeeded = true
	b.logger.Info("Build succeeded",
		"candidate", candidate.Name,
		"elapsed", elapsed)
	return outcome, nil
}

// tailExcerpt keeps at most limit bytes from the end of s.
func tailExcerpt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return "...(truncated)...\n" + s[len(s)-limit:]
}
