// precheck.go: Best-effort source sanity check
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"fmt"
	"os"
)

// precheckSource runs a cheap delimiter-balance scan over an entry source
// file. It is explicitly weaker than real compilation and exists only to
// produce an early, friendly warning for obviously truncated files; the
// build step's exit code is always the authority.
//
// String and rune literals and comments are not tracked, so false positives
// are possible; callers must only ever log the result.
func precheckSource(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the validator, under the modules root
	if err != nil {
		return err
	}

	var braces, parens, brackets int
	for _, b := range data {
		switch b {
		case '{':
			braces++
		case '}':
			braces--
		case '(':
			parens++
		case ')':
			parens--
		case '[':
			brackets++
		case ']':
			brackets--
		}
	}

	if braces != 0 || parens != 0 || brackets != 0 {
		return fmt.Errorf("unbalanced delimiters (braces %+d, parens %+d, brackets %+d)",
			braces, parens, brackets)
	}
	return nil
}
