// failures.go: Accumulation and draining of per-candidate failures
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"sync"

	"github.com/agilira/go-timecache"
)

// FailureTracker accumulates the candidates rejected by any stage of one
// discovery pass. Records are append-only; Drain returns and clears the
// current contents and is intended to be called exactly once per pass by
// whichever caller surfaces failures to the user, so repeated reporting
// never re-announces stale failures from a previous pass.
type FailureTracker struct {
	mu      sync.Mutex
	records []FailureRecord
	logger  Logger
}

// NewFailureTracker creates an empty tracker.
func NewFailureTracker(logger Logger) *FailureTracker {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &FailureTracker{logger: logger}
}

// Record appends one rejection.
func (t *FailureTracker) Record(candidateName string, stage FailureStage, reason string) {
	record := FailureRecord{
		CandidateName: candidateName,
		Stage:         stage,
		Reason:        reason,
		OccurredAt:    timecache.CachedTime(),
	}

	t.mu.Lock()
	t.records = append(t.records, record)
	t.mu.Unlock()

	t.logger.Warn("Candidate rejected",
		"candidate", candidateName,
		"stage", string(stage),
		"reason", reason)
}

// Drain returns the accumulated records and clears the tracker.
func (t *FailureTracker) Drain() []FailureRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	drained := t.records
	t.records = nil
	return drained
}

// Len returns the number of pending records without draining them.
func (t *FailureTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
