// dirfilter.go: Exclusion predicate for non-module infrastructure directories
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"strings"
)

// Reserved prefix characters: any directory whose name starts with one of
// these is hidden or tool-owned and never a module candidate.
const reservedPrefixes = "._~"

// defaultExcludedNames are exact directory names that hold build output or
// project infrastructure rather than module sources.
var defaultExcludedNames = map[string]struct{}{
	"build":        {},
	"dist":         {},
	"out":          {},
	"target":       {},
	"vendor":       {},
	"node_modules": {},
	"testdata":     {},
	"tmp":          {},
}

// DirectoryFilter decides whether a directory name should be excluded from
// module candidate consideration. The zero value is not usable; construct
// with NewDirectoryFilter.
//
// The filter is a pure predicate: it inspects only the name, never the
// filesystem, so filtering is idempotent and trivially repeatable.
type DirectoryFilter struct {
	excluded map[string]struct{}
}

// NewDirectoryFilter creates a filter with the default exclusion set plus
// any additional exact names supplied by the host configuration.
func NewDirectoryFilter(extra ...string) *DirectoryFilter {
	excluded := make(map[string]struct{}, len(defaultExcludedNames)+len(extra))
	for name := range defaultExcludedNames {
		excluded[name] = struct{}{}
	}
	for _, name := range extra {
		if name = strings.TrimSpace(name); name != "" {
			excluded[strings.ToLower(name)] = struct{}{}
		}
	}
	return &DirectoryFilter{excluded: excluded}
}

// Excluded reports whether the given directory name must be dropped:
// empty names, names starting with a reserved prefix character, and exact
// matches of the exclusion set (case-insensitive).
func (f *DirectoryFilter) Excluded(name string) bool {
	if name == "" {
		return true
	}
	if strings.ContainsRune(reservedPrefixes, rune(name[0])) {
		return true
	}
	_, found := f.excluded[strings.ToLower(name)]
	return found
}
