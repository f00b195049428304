// recovery.go: Panic recovery utilities with stack trace capture
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"runtime"
)

// withStackRecover returns a deferred recovery function that logs a panic
// together with its stack trace. It guards goroutines whose panics must not
// take down the host, such as progress-event handlers.
//
//	go func() {
//	    defer withStackRecover(logger)()
//	    handler(event)
//	}()
func withStackRecover(logger Logger) func() {
	return func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			logger.Error("Panic recovered in goroutine",
				"panic", r,
				"stack", string(buf[:n]))
		}
	}
}

// safeGo runs fn in a new goroutine with automatic panic recovery.
func safeGo(logger Logger, fn func()) {
	go func() {
		defer withStackRecover(logger)()
		fn()
	}()
}

// capturePanic invokes fn and converts any panic into a captured value with
// its stack trace. Used at the dynamic-loading boundary, where a module's
// entry point may do anything at all during construction and must not abort
// the discovery pass.
func capturePanic(fn func()) (recovered interface{}, stack string) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			recovered = r
			stack = string(buf[:n])
		}
	}()
	fn()
	return nil, ""
}
