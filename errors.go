// errors.go: structured error definitions for the modhost discovery pipeline
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"github.com/agilira/go-errors"
)

// Error codes for the modhost system
const (
	// Scanner errors (1100-1199)
	ErrCodeDirectoryUnavailable = "MODHOST_1101"
	ErrCodeScanBudgetExceeded   = "MODHOST_1102"

	// Validation errors (1200-1299)
	ErrCodeValidationFailure = "MODHOST_1201"
	ErrCodeManifestParse     = "MODHOST_1202"
	ErrCodeManifestInvalid   = "MODHOST_1203"
	ErrCodeUnsafeModuleName  = "MODHOST_1204"

	// Build errors (1300-1399)
	ErrCodeBuildFailure = "MODHOST_1301"
	ErrCodeBuildTimeout = "MODHOST_1302"
	ErrCodeBuildStart   = "MODHOST_1303"

	// Load errors (1400-1499)
	ErrCodeArtifactOpen      = "MODHOST_1401"
	ErrCodeSymbolMissing     = "MODHOST_1402"
	ErrCodeContractViolation = "MODHOST_1403"
	ErrCodeEntryPointPanic   = "MODHOST_1404"
	ErrCodeDuplicateModule   = "MODHOST_1405"

	// Orchestration errors (1500-1599)
	ErrCodeCancelled     = "MODHOST_1501"
	ErrCodeDiscoveryBusy = "MODHOST_1502"

	// Host configuration errors (1600-1699)
	ErrCodeConfigNotFound = "MODHOST_1601"
	ErrCodeConfigParse    = "MODHOST_1602"
	ErrCodeConfigInvalid  = "MODHOST_1603"
	ErrCodeConfigWatcher  = "MODHOST_1604"
)

// Scanner error constructors

func NewDirectoryUnavailableError(root string, cause error) *errors.Error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeDirectoryUnavailable, "Modules directory unavailable").
			WithUserMessage("The modules directory does not exist or cannot be read").
			WithContext("root", root).
			WithSeverity("error")
	}
	return errors.New(ErrCodeDirectoryUnavailable, "Modules directory unavailable").
		WithUserMessage("The modules directory does not exist or cannot be read").
		WithContext("root", root).
		WithSeverity("error")
}

func NewScanBudgetExceededError(root string, collected int) *errors.Error {
	return errors.New(ErrCodeScanBudgetExceeded, "Directory scan budget exceeded").
		WithUserMessage("Listing the modules directory took too long; partial results were kept").
		WithContext("root", root).
		WithContext("collected", collected).
		WithSeverity("warning")
}

// Validation error constructors

func NewValidationFailureError(candidate string, missing []string) *errors.Error {
	return errors.New(ErrCodeValidationFailure, "Candidate failed structural validation").
		WithUserMessage("The module directory is missing required files").
		WithContext("candidate", candidate).
		WithContext("missing", missing).
		WithSeverity("warning")
}

func NewManifestParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeManifestParse, "Manifest parse error").
		WithUserMessage("The module manifest could not be parsed").
		WithContext("manifest_path", path).
		WithSeverity("warning")
}

func NewManifestInvalidError(message string) *errors.Error {
	return errors.New(ErrCodeManifestInvalid, "Invalid manifest: "+message).
		WithUserMessage("The module manifest declares invalid metadata").
		WithSeverity("warning")
}

func NewUnsafeModuleNameError(name string) *errors.Error {
	return errors.New(ErrCodeUnsafeModuleName, "Unsafe module name").
		WithUserMessage("The module name contains forbidden characters").
		WithContext("module_name", name).
		WithSeverity("error")
}

// Build error constructors

func NewBuildFailureError(candidate string, exitCode int, logExcerpt string) *errors.Error {
	return errors.New(ErrCodeBuildFailure, "Module build failed").
		WithUserMessage("The external build step exited with a non-zero status").
		WithContext("candidate", candidate).
		WithContext("exit_code", exitCode).
		WithContext("log", logExcerpt).
		WithSeverity("warning")
}

func NewBuildTimeoutError(candidate string, timeout interface{}) *errors.Error {
	return errors.New(ErrCodeBuildTimeout, "Module build timed out").
		WithUserMessage("The external build step exceeded its time budget").
		WithContext("candidate", candidate).
		WithContext("timeout", timeout).
		WithSeverity("warning")
}

func NewBuildStartError(candidate string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeBuildStart, "Build step could not be started").
		WithUserMessage("The external build tool could not be invoked").
		WithContext("candidate", candidate).
		WithSeverity("error")
}

// Load error constructors

func NewArtifactOpenError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeArtifactOpen, "Compiled module could not be opened").
		WithUserMessage("The compiled module artifact is missing or not loadable").
		WithContext("artifact_path", path).
		WithSeverity("warning")
}

func NewSymbolMissingError(symbol string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeSymbolMissing, "Entry point symbol missing").
		WithUserMessage("The compiled module does not export the required entry point").
		WithContext("symbol", symbol).
		WithSeverity("warning")
}

func NewContractViolationError(candidate string, message string) *errors.Error {
	return errors.New(ErrCodeContractViolation, "Module contract violation: "+message).
		WithUserMessage("The module's declared metadata violates the plugin contract").
		WithContext("candidate", candidate).
		WithSeverity("warning")
}

func NewEntryPointPanicError(candidate string, recovered interface{}) *errors.Error {
	return errors.New(ErrCodeEntryPointPanic, "Module entry point panicked").
		WithUserMessage("The module crashed while being constructed").
		WithContext("candidate", candidate).
		WithContext("panic", recovered).
		WithSeverity("warning")
}

func NewDuplicateModuleError(name string, firstSource string) *errors.Error {
	return errors.New(ErrCodeDuplicateModule, "Duplicate module name").
		WithUserMessage("Another module with the same declared name was already loaded").
		WithContext("module_name", name).
		WithContext("first_source", firstSource).
		WithSeverity("warning")
}

// Orchestration error constructors

func NewCancelledError(cause error) *errors.Error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeCancelled, "Discovery pass cancelled").
			WithUserMessage("The discovery pass was interrupted before completing").
			WithSeverity("info")
	}
	return errors.New(ErrCodeCancelled, "Discovery pass cancelled").
		WithUserMessage("The discovery pass was interrupted before completing").
		WithSeverity("info")
}

func NewDiscoveryBusyError() *errors.Error {
	return errors.New(ErrCodeDiscoveryBusy, "Discovery pass already running").
		WithUserMessage("A discovery pass is already in flight; retry after it completes").
		WithSeverity("warning")
}

// Host configuration error constructors

func NewConfigNotFoundError(path string) *errors.Error {
	return errors.New(ErrCodeConfigNotFound, "Host configuration file not found").
		WithUserMessage("The host configuration file could not be found").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParse, "Host configuration parse error").
		WithUserMessage("Failed to parse the host configuration file").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigInvalidError(message string) *errors.Error {
	return errors.New(ErrCodeConfigInvalid, "Invalid host configuration: "+message).
		WithUserMessage("The host configuration is invalid").
		WithSeverity("error")
}

func NewConfigWatcherError(message string, cause error) *errors.Error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeConfigWatcher, "Configuration watcher error: "+message).
			WithUserMessage("Configuration monitoring failed").
			WithSeverity("error")
	}
	return errors.New(ErrCodeConfigWatcher, "Configuration watcher error: "+message).
		WithUserMessage("Configuration monitoring failed").
		WithSeverity("error")
}

// ErrorCode extracts the modhost error code from err, or "" when err is not
// a coded error. Useful for callers that branch on the taxonomy without
// string-matching messages.
func ErrorCode(err error) string {
	if coded, ok := err.(*errors.Error); ok {
		return string(coded.Code)
	}
	return ""
}
