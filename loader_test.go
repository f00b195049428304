// loader_test.go: Tests for the dynamic loading isolation boundary
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleLoader_Load(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		root := t.TempDir()
		dir := writeModuleDir(t, root, "chess", "chess")
		writeArtifact(t, dir)

		opener := newFakeOpener()
		opener.provide("chess", "chess")
		loader := NewModuleLoader(opener, NewTestLogger())

		module, err := loader.Load(candidateAt(t, root, "chess"))
		require.NoError(t, err)
		assert.Equal(t, "chess", module.Name())
		assert.Equal(t, dir, module.SourcePath)
		assert.Equal(t, ArtifactPath(dir), module.ArtifactPath)
		assert.NotNil(t, module.Instance)
		assert.False(t, module.LoadedAt.IsZero())

		reply, err := module.Instance.HandleMessage(map[string]any{"op": "ping"})
		require.NoError(t, err)
		assert.NotEmpty(t, reply)
	})

	t.Run("missing_artifact", func(t *testing.T) {
		root := t.TempDir()
		writeModuleDir(t, root, "chess", "chess")

		loader := NewModuleLoader(newFakeOpener(), NewTestLogger())
		_, err := loader.Load(candidateAt(t, root, "chess"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeArtifactOpen, ErrorCode(err))
	})

	t.Run("missing_entry_symbol", func(t *testing.T) {
		root := t.TempDir()
		dir := writeModuleDir(t, root, "blank", "blank")
		writeArtifact(t, dir)

		loader := NewModuleLoader(newFakeOpener(), NewTestLogger())
		_, err := loader.Load(candidateAt(t, root, "blank"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeSymbolMissing, ErrorCode(err))
	})

	t.Run("panicking_constructor_is_isolated", func(t *testing.T) {
		root := t.TempDir()
		dir := writeModuleDir(t, root, "volatile", "volatile")
		writeArtifact(t, dir)

		opener := newFakeOpener()
		opener.panicking["volatile"] = true
		loader := NewModuleLoader(opener, NewTestLogger())

		_, err := loader.Load(candidateAt(t, root, "volatile"))
		require.Error(t, err, "the panic must surface as an error, never propagate")
		assert.Equal(t, ErrCodeEntryPointPanic, ErrorCode(err))
	})

	t.Run("nil_instance_violates_contract", func(t *testing.T) {
		root := t.TempDir()
		dir := writeModuleDir(t, root, "hollow", "hollow")
		writeArtifact(t, dir)

		opener := newFakeOpener()
		opener.nilFor["hollow"] = true
		loader := NewModuleLoader(opener, NewTestLogger())

		_, err := loader.Load(candidateAt(t, root, "hollow"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeContractViolation, ErrorCode(err))
	})

	t.Run("panicking_metadata_is_isolated", func(t *testing.T) {
		root := t.TempDir()
		dir := writeModuleDir(t, root, "moody", "moody")
		writeArtifact(t, dir)

		opener := newFakeOpener()
		opener.modules["moody"] = &fakeGameModule{meta: playableMeta("moody"), metaPanics: true}
		loader := NewModuleLoader(opener, NewTestLogger())

		_, err := loader.Load(candidateAt(t, root, "moody"))
		require.Error(t, err)
		assert.Equal(t, ErrCodeEntryPointPanic, ErrorCode(err))
	})

	t.Run("contract_violating_metadata", func(t *testing.T) {
		cases := map[string]ModuleMetadata{
			"empty_name":       {Name: "", Version: "1.0.0", MinPlayers: 1, MaxPlayers: 2},
			"unsafe_name":      {Name: "../up", Version: "1.0.0", MinPlayers: 1, MaxPlayers: 2},
			"zero_min_players": {Name: "x", Version: "1.0.0", MinPlayers: 0, MaxPlayers: 2},
			"max_below_min":    {Name: "x", Version: "1.0.0", MinPlayers: 3, MaxPlayers: 1},
		}
		for name, meta := range cases {
			t.Run(name, func(t *testing.T) {
				root := t.TempDir()
				dir := writeModuleDir(t, root, "m", "m")
				writeArtifact(t, dir)

				opener := newFakeOpener()
				opener.modules["m"] = &fakeGameModule{meta: meta}
				loader := NewModuleLoader(opener, NewTestLogger())

				_, err := loader.Load(candidateAt(t, root, "m"))
				require.Error(t, err)
				assert.Equal(t, ErrCodeContractViolation, ErrorCode(err))
			})
		}
	})
}
