// fsutil.go: Small filesystem helpers shared by the pipeline stages
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"
)

// joinClean joins path elements and normalizes the result.
func joinClean(elem ...string) string {
	return filepath.Clean(filepath.Join(elem...))
}

// isEOF reports whether err marks the normal end of a directory listing.
func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// modTime returns the modification time of path, or the zero time when the
// path does not exist or cannot be stat'ed.
func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// newestModTime walks the immediate files of dir (non-recursive) matched by
// keep and returns the newest modification time seen. Subdirectories are
// ignored: module sources live flat in the candidate directory, and build
// output lives in its own excluded subdirectory.
func newestModTime(dir string, keep func(name string) bool) time.Time {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}
	}
	var newest time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if keep != nil && !keep(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mt := info.ModTime(); mt.After(newest) {
			newest = mt
		}
	}
	return newest
}
