// helpers_test.go: Shared fixtures and fakes for the modhost test suite
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// writeModuleDir creates a well-formed candidate directory under root: the
// entry source and a JSON manifest declaring the given module name. Returns
// the candidate path.
func writeModuleDir(t *testing.T, root, dirName, declaredName string) string {
	t.Helper()
	dir := filepath.Join(root, dirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	writeFile(t, filepath.Join(dir, EntrySourceFile), "package main\n")
	writeFile(t, filepath.Join(dir, "module.json"), fmt.Sprintf(
		`{"name":%q,"version":"1.0.0","min_players":1,"max_players":4}`, declaredName))
	return dir
}

// writeArtifact creates the conventional compiled output file for a
// candidate directory so freshness checks see a prebuilt module.
func writeArtifact(t *testing.T, candidateDir string) string {
	t.Helper()
	artifact := ArtifactPath(candidateDir)
	if err := os.MkdirAll(filepath.Dir(artifact), 0o750); err != nil {
		t.Fatalf("mkdir artifact dir: %v", err)
	}
	writeFile(t, artifact, "not a real shared object")
	return artifact
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// candidateOfArtifact recovers the candidate directory name from an
// artifact path (<candidate>/build/module.so).
func candidateOfArtifact(artifactPath string) string {
	return filepath.Base(filepath.Dir(filepath.Dir(artifactPath)))
}

// fakeGameModule is a minimal in-process GameModule for loader and
// orchestrator tests.
type fakeGameModule struct {
	meta       ModuleMetadata
	metaPanics bool
}

func (m *fakeGameModule) Metadata() ModuleMetadata {
	if m.metaPanics {
		panic("metadata exploded")
	}
	return m.meta
}

func (m *fakeGameModule) HandleMessage(request map[string]any) (map[string]any, error) {
	return map[string]any{"echo": request}, nil
}

func playableMeta(name string) ModuleMetadata {
	return ModuleMetadata{Name: name, Version: "1.0.0", MinPlayers: 1, MaxPlayers: 4}
}

// fakeOpener resolves artifacts to in-process entry points, keyed by the
// candidate directory name, so loading semantics run without a compiler.
type fakeOpener struct {
	mu    sync.Mutex
	opens []string

	modules   map[string]GameModule // candidate dir name -> instance
	panicking map[string]bool       // constructor panics
	nilFor    map[string]bool       // constructor returns nil
	openErr   map[string]error      // Open itself fails
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{
		modules:   make(map[string]GameModule),
		panicking: make(map[string]bool),
		nilFor:    make(map[string]bool),
		openErr:   make(map[string]error),
	}
}

func (f *fakeOpener) provide(dirName, declaredName string) {
	f.modules[dirName] = &fakeGameModule{meta: playableMeta(declaredName)}
}

func (f *fakeOpener) Open(artifactPath string) (EntryPointFunc, error) {
	name := candidateOfArtifact(artifactPath)

	f.mu.Lock()
	f.opens = append(f.opens, name)
	f.mu.Unlock()

	if err := f.openErr[name]; err != nil {
		return nil, err
	}
	if f.panicking[name] {
		return func() GameModule { panic("constructor exploded") }, nil
	}
	if f.nilFor[name] {
		return func() GameModule { return nil }, nil
	}
	instance, ok := f.modules[name]
	if !ok {
		return nil, NewSymbolMissingError(EntryPointSymbol, nil)
	}
	return func() GameModule { return instance }, nil
}

func (f *fakeOpener) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opens)
}

// fakeRunner simulates the external build tool. A successful run writes the
// conventional artifact file so the loader finds it.
type fakeRunner struct {
	mu   sync.Mutex
	runs []string

	exitCodes map[string]int  // candidate name -> non-zero exit
	blocking  map[string]bool // wait for ctx before returning

	// onRun is invoked before the simulated build runs; tests hook
	// cancellation and gating through it.
	onRun func(candidate ModuleCandidate)
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		exitCodes: make(map[string]int),
		blocking:  make(map[string]bool),
	}
}

func (f *fakeRunner) Run(ctx context.Context, candidate ModuleCandidate) (int, string, error) {
	f.mu.Lock()
	f.runs = append(f.runs, candidate.Name)
	f.mu.Unlock()

	if f.onRun != nil {
		f.onRun(candidate)
	}
	if f.blocking[candidate.Name] {
		<-ctx.Done()
		return -1, "", ctx.Err()
	}
	if code := f.exitCodes[candidate.Name]; code != 0 {
		return code, "simulated compile error\n", nil
	}

	artifact := ArtifactPath(candidate.Path)
	if err := os.MkdirAll(filepath.Dir(artifact), 0o750); err != nil {
		return -1, "", err
	}
	if err := os.WriteFile(artifact, []byte("built"), 0o600); err != nil {
		return -1, "", err
	}
	return 0, "ok\n", nil
}

func (f *fakeRunner) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

// testOrchestrator wires an orchestrator over a temp modules root with the
// fake build runner and fake opener.
func testOrchestrator(t *testing.T, root string, runner *fakeRunner, opener *fakeOpener) *Orchestrator {
	t.Helper()
	config := DefaultHostConfig()
	config.ModulesDir = root
	return NewOrchestrator(config, NewTestLogger(),
		WithBuildRunner(runner),
		WithEntryPointOpener(opener))
}
