// failures_test.go: Tests for failure accumulation and draining
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureTracker_RecordAndDrain(t *testing.T) {
	tracker := NewFailureTracker(NewTestLogger())
	assert.Equal(t, 0, tracker.Len())

	tracker.Record("alpha", StageValidation, "missing entry source")
	tracker.Record("beta", StageBuild, "exit code 2")
	tracker.Record("gamma", StageLoad, "constructor panicked")
	assert.Equal(t, 3, tracker.Len())

	drained := tracker.Drain()
	require.Len(t, drained, 3)
	assert.Equal(t, "alpha", drained[0].CandidateName)
	assert.Equal(t, StageValidation, drained[0].Stage)
	assert.Equal(t, StageBuild, drained[1].Stage)
	assert.Equal(t, StageLoad, drained[2].Stage)
	for _, record := range drained {
		assert.False(t, record.OccurredAt.IsZero())
	}
}

func TestFailureTracker_DrainClearsExactlyOnce(t *testing.T) {
	tracker := NewFailureTracker(NewTestLogger())
	tracker.Record("alpha", StageValidation, "whatever")

	first := tracker.Drain()
	assert.Len(t, first, 1)

	// A second drain reports nothing: stale failures are never re-announced.
	assert.Empty(t, tracker.Drain())
	assert.Equal(t, 0, tracker.Len())

	tracker.Record("beta", StageBuild, "fresh failure after drain")
	assert.Len(t, tracker.Drain(), 1)
}
