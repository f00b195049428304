// errors_test.go: Tests for the coded error taxonomy
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	t.Run("coded_errors_yield_their_code", func(t *testing.T) {
		cases := map[string]error{
			ErrCodeDirectoryUnavailable: NewDirectoryUnavailableError("/nope", nil),
			ErrCodeBuildFailure:         NewBuildFailureError("chess", 2, "boom"),
			ErrCodeEntryPointPanic:      NewEntryPointPanicError("chess", "boom"),
			ErrCodeCancelled:            NewCancelledError(nil),
			ErrCodeDiscoveryBusy:        NewDiscoveryBusyError(),
			ErrCodeConfigWatcher:        NewConfigWatcherError("already running", nil),
		}
		for want, err := range cases {
			assert.Equal(t, want, ErrorCode(err), "error %v", err)
		}
	})

	t.Run("plain_errors_yield_empty", func(t *testing.T) {
		assert.Empty(t, ErrorCode(fmt.Errorf("uncoded")))
		assert.Empty(t, ErrorCode(nil))
	})
}
