// config.go: Host configuration for the module discovery pipeline
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so host configuration files can spell
// durations as strings ("5s", "2m").
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler, accepting either a duration
// string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		parsed, err := time.ParseDuration(asString)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var asNanos int64
	if err := json.Unmarshal(data, &asNanos); err != nil {
		return err
	}
	*d = Duration(asNanos)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler, accepting either a duration
// string or a number of nanoseconds, mirroring the JSON path.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if asNanos, err := strconv.ParseInt(value.Value, 10, 64); err == nil {
		*d = Duration(asNanos)
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// HostConfig configures one Orchestrator. The zero value is not usable;
// start from DefaultHostConfig or load a file with LoadHostConfig.
type HostConfig struct {
	// ModulesDir is the root directory scanned for module candidates.
	ModulesDir string `json:"modules_dir" yaml:"modules_dir"`

	// ScanBudget bounds the wall-clock time of one directory listing.
	ScanBudget Duration `json:"scan_budget,omitempty" yaml:"scan_budget,omitempty"`

	// BuildTimeout bounds one external build invocation.
	BuildTimeout Duration `json:"build_timeout,omitempty" yaml:"build_timeout,omitempty"`

	// BuildCommand is the external build command line, run inside the
	// candidate directory. Empty means the default Go plugin build.
	BuildCommand []string `json:"build_command,omitempty" yaml:"build_command,omitempty"`

	// ExcludedDirs adds exact directory names to the default filter set.
	ExcludedDirs []string `json:"excluded_dirs,omitempty" yaml:"excluded_dirs,omitempty"`

	// SourcePrecheck enables the advisory delimiter-balance check on entry
	// sources during validation.
	SourcePrecheck bool `json:"source_precheck,omitempty" yaml:"source_precheck,omitempty"`
}

// DefaultHostConfig returns the configuration used when the host supplies
// nothing: modules under ./modules, default budgets, default build command.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		ModulesDir:   "modules",
		ScanBudget:   Duration(DefaultScanBudget),
		BuildTimeout: Duration(DefaultBuildTimeout),
	}
}

// Validate checks the configuration for structural problems.
func (c HostConfig) Validate() error {
	if strings.TrimSpace(c.ModulesDir) == "" {
		return NewConfigInvalidError("modules_dir is required")
	}
	if c.ScanBudget.Std() < 0 {
		return NewConfigInvalidError("scan_budget must not be negative")
	}
	if c.BuildTimeout.Std() < 0 {
		return NewConfigInvalidError("build_timeout must not be negative")
	}
	for i, part := range c.BuildCommand {
		if i == 0 && strings.TrimSpace(part) == "" {
			return NewConfigInvalidError("build_command must start with an executable name")
		}
	}
	return nil
}

// withDefaults fills unset optional fields from DefaultHostConfig.
func (c HostConfig) withDefaults() HostConfig {
	defaults := DefaultHostConfig()
	if c.ScanBudget.Std() <= 0 {
		c.ScanBudget = defaults.ScanBudget
	}
	if c.BuildTimeout.Std() <= 0 {
		c.BuildTimeout = defaults.BuildTimeout
	}
	return c
}

// LoadHostConfig reads a host configuration file. The format is detected
// from the file extension (JSON or YAML).
func LoadHostConfig(path string) (HostConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the host application
	if err != nil {
		if os.IsNotExist(err) {
			return HostConfig{}, NewConfigNotFoundError(path)
		}
		return HostConfig{}, NewConfigParseError(path, err)
	}

	var config HostConfig
	switch argus.DetectFormat(path) {
	case argus.FormatJSON:
		err = json.Unmarshal(data, &config)
	case argus.FormatYAML:
		err = yaml.Unmarshal(data, &config)
	default:
		return HostConfig{}, NewConfigParseError(path, fmt.Errorf("unsupported config format"))
	}
	if err != nil {
		return HostConfig{}, NewConfigParseError(path, err)
	}

	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return HostConfig{}, err
	}
	return config, nil
}
