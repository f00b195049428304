// manifest_test.go: Tests for manifest parsing and metadata sanity checks
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest_Formats(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "module.json")
		writeFile(t, path, `{"name":"chess","version":"2.1.0","description":"classic","min_players":2,"max_players":2}`)

		manifest, err := ParseManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "chess", manifest.Name)
		assert.Equal(t, "2.1.0", manifest.Version)
		assert.Equal(t, 2, manifest.MinPlayers)
		assert.Equal(t, 2, manifest.MaxPlayers)
		require.NoError(t, manifest.Validate())
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "module.yaml")
		writeFile(t, path, "name: poker\nversion: 0.3.0\nmin_players: 2\nmax_players: 8\nauthor: someone\n")

		manifest, err := ParseManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "poker", manifest.Name)
		assert.Equal(t, 8, manifest.MaxPlayers)
		assert.Equal(t, "someone", manifest.Author)
		require.NoError(t, manifest.Validate())
	})

	t.Run("malformed_json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		writeFile(t, path, `{"name": "unterminated`)

		_, err := ParseManifest(path)
		require.Error(t, err)
		assert.Equal(t, ErrCodeManifestParse, ErrorCode(err))
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := ParseManifest(filepath.Join(dir, "absent.json"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeManifestParse, ErrorCode(err))
	})
}

func TestModuleManifest_Validate(t *testing.T) {
	base := func() ModuleManifest {
		return ModuleManifest{ModuleMetadata: playableMeta("checkers")}
	}

	t.Run("valid", func(t *testing.T) {
		m := base()
		assert.NoError(t, m.Validate())
	})

	t.Run("missing_name", func(t *testing.T) {
		m := base()
		m.Name = "  "
		assert.Equal(t, ErrCodeManifestInvalid, ErrorCode(m.Validate()))
	})

	t.Run("missing_version", func(t *testing.T) {
		m := base()
		m.Version = ""
		assert.Equal(t, ErrCodeManifestInvalid, ErrorCode(m.Validate()))
	})

	t.Run("non_positive_min_players", func(t *testing.T) {
		m := base()
		m.MinPlayers = 0
		assert.Equal(t, ErrCodeManifestInvalid, ErrorCode(m.Validate()))
	})

	t.Run("max_below_min", func(t *testing.T) {
		m := base()
		m.MinPlayers = 4
		m.MaxPlayers = 2
		assert.Equal(t, ErrCodeManifestInvalid, ErrorCode(m.Validate()))
	})

	t.Run("unsafe_name", func(t *testing.T) {
		for _, name := range []string{"../escape", `dir\name`, "a/b", "ctrl\x00char"} {
			m := base()
			m.Name = name
			assert.Equal(t, ErrCodeUnsafeModuleName, ErrorCode(m.Validate()), "name %q", name)
		}
	})
}

func TestFindManifest_LookupOrder(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, findManifest(dir), "no manifest present")

	writeFile(t, filepath.Join(dir, "module.yml"), "name: x\n")
	assert.Equal(t, filepath.Join(dir, "module.yml"), findManifest(dir))

	// JSON takes precedence once present.
	writeFile(t, filepath.Join(dir, "module.json"), `{"name":"x"}`)
	assert.Equal(t, filepath.Join(dir, "module.json"), findManifest(dir))
}
