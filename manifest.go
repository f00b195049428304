// manifest.go: Module manifest parsing and sanity checking
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

// manifestFileNames are the accepted manifest file names inside a candidate
// directory, in lookup order. The first one present wins.
var manifestFileNames = []string{"module.json", "module.yaml", "module.yml"}

// ModuleManifest is the metadata source file a module author ships next to
// the entry source. It pre-declares the same fields the live instance later
// reports through GameModule.Metadata, so broken metadata is caught during
// validation instead of after an expensive build.
type ModuleManifest struct {
	ModuleMetadata `yaml:",inline"`

	// Author and Homepage are informational only.
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Homepage string `json:"homepage,omitempty" yaml:"homepage,omitempty"`
}

// findManifest returns the path of the candidate's manifest file, or "" when
// none of the accepted names exists.
func findManifest(candidateDir string) string {
	for _, name := range manifestFileNames {
		path := filepath.Join(candidateDir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// ParseManifest reads and parses a manifest file. The format is detected
// from the file extension (JSON or YAML).
func ParseManifest(path string) (*ModuleManifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the scanner, under the modules root
	if err != nil {
		return nil, NewManifestParseError(path, err)
	}

	var manifest ModuleManifest
	switch argus.DetectFormat(path) {
	case argus.FormatJSON:
		err = json.Unmarshal(data, &manifest)
	case argus.FormatYAML:
		err = yaml.Unmarshal(data, &manifest)
	default:
		return nil, NewManifestParseError(path, NewManifestInvalidError("unsupported manifest format"))
	}
	if err != nil {
		return nil, NewManifestParseError(path, err)
	}

	return &manifest, nil
}

// Validate sanity-checks the declared metadata. It enforces the same
// invariants the loader later enforces against the live instance, so a bad
// manifest surfaces as a precise validation failure before any build runs.
func (m *ModuleManifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return NewManifestInvalidError("module name is required")
	}
	if err := validateModuleName(m.Name); err != nil {
		return err
	}
	if strings.TrimSpace(m.Version) == "" {
		return NewManifestInvalidError("module version is required")
	}
	if m.MinPlayers <= 0 {
		return NewManifestInvalidError("min_players must be positive")
	}
	if m.MaxPlayers < m.MinPlayers {
		return NewManifestInvalidError("max_players must be >= min_players")
	}
	return nil
}

// validateModuleName rejects names that could escape the modules root or
// confuse downstream consumers: path separators, traversal sequences,
// control characters.
func validateModuleName(name string) error {
	if strings.Contains(name, "..") {
		return NewUnsafeModuleNameError(name)
	}
	if strings.ContainsAny(name, `/\`) {
		return NewUnsafeModuleNameError(name)
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return NewUnsafeModuleNameError(name)
		}
	}
	return nil
}
