// scanner.go: Candidate discovery with a bounded directory listing
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/agilira/go-timecache"
)

// DefaultScanBudget bounds the wall-clock time one directory listing may
// take. Pathological filesystems (dead network mounts, enormous
// directories) yield partial results instead of hanging the pass.
const DefaultScanBudget = 5 * time.Second

// scanBatchSize is how many directory entries are read between deadline
// checks.
const scanBatchSize = 64

// CandidateScanner lists the immediate subdirectories of a modules root,
// applies the directory filter, and returns the surviving candidates in
// name order.
type CandidateScanner struct {
	filter *DirectoryFilter
	budget time.Duration
	logger Logger
}

// NewCandidateScanner creates a scanner with the given filter and wall-clock
// budget. A non-positive budget falls back to DefaultScanBudget.
func NewCandidateScanner(filter *DirectoryFilter, budget time.Duration, logger Logger) *CandidateScanner {
	if budget <= 0 {
		budget = DefaultScanBudget
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	return &CandidateScanner{filter: filter, budget: budget, logger: logger}
}

// Scan lists module candidates under root.
//
// The only fatal condition is an unavailable root (missing, not a
// directory, unreadable): it returns a DirectoryUnavailable error and this
// is the only error that aborts an entire discovery pass. Exhausting the
// time budget is not fatal; whatever was collected so far is returned
// together with a warning in the log. Partial results are acceptable,
// silence is not.
func (s *CandidateScanner) Scan(ctx context.Context, root string) ([]ModuleCandidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, NewDirectoryUnavailableError(root, err)
	}
	if !info.IsDir() {
		return nil, NewDirectoryUnavailableError(root, nil)
	}

	dir, err := os.Open(root) // #nosec G304 -- root is the host-configured modules directory
	if err != nil {
		return nil, NewDirectoryUnavailableError(root, err)
	}
	defer func() {
		if closeErr := dir.Close(); closeErr != nil {
			s.logger.Warn("Failed to close modules directory", "root", root, "error", closeErr)
		}
	}()

	deadline := timecache.CachedTime().Add(s.budget)
	candidates := make([]ModuleCandidate, 0, 16)
	truncated := false

	for {
		if ctx.Err() != nil {
			return nil, NewCancelledError(ctx.Err())
		}
		if time.Now().After(deadline) {
			truncated = true
			break
		}

		entries, readErr := dir.ReadDir(scanBatchSize)
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if s.filter.Excluded(name) {
				s.logger.Debug("Filtered out directory", "name", name)
				continue
			}
			candidates = append(candidates, ModuleCandidate{
				Path: joinClean(root, name),
				Name: name,
			})
		}
		if readErr != nil {
			// io.EOF ends the listing; anything else mid-listing degrades to
			// partial results rather than killing the pass.
			if !isEOF(readErr) {
				s.logger.Warn("Directory listing ended early", "root", root, "error", readErr)
				truncated = true
			}
			break
		}
	}

	if truncated {
		s.logger.Warn("Scan returned partial results",
			"root", root,
			"collected", len(candidates),
			"budget", s.budget)
	}

	// Listing order is the pipeline's processing order; make it stable
	// across platforms.
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	s.logger.Info("Candidate scan completed",
		"root", root,
		"candidates", len(candidates),
		"partial", truncated)

	return candidates, nil
}
