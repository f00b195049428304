// recovery_test.go: Tests for panic recovery utilities
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturePanic(t *testing.T) {
	t.Run("no_panic", func(t *testing.T) {
		ran := false
		recovered, stack := capturePanic(func() { ran = true })
		assert.True(t, ran)
		assert.Nil(t, recovered)
		assert.Empty(t, stack)
	})

	t.Run("panic_captured_with_stack", func(t *testing.T) {
		recovered, stack := capturePanic(func() { panic("boom") })
		require.NotNil(t, recovered)
		assert.Equal(t, "boom", recovered)
		assert.Contains(t, stack, "goroutine")
	})
}

func TestSafeGo_RecoversPanics(t *testing.T) {
	logger := NewTestLogger()
	done := make(chan struct{})

	safeGo(logger, func() {
		defer close(done)
		panic("background failure")
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("goroutine never finished")
	}
	assert.True(t, logger.HasMessage("ERROR", "Panic recovered in goroutine"))
}
