// orchestrator.go: Background discovery pass orchestration
//
// The orchestrator sequences scanner, validator, freshness checker, build
// step, and loader into one discovery pass, emits ordered progress events,
// and guarantees that at most one pass is in flight at a time. A pass is
// cancellable at every stage boundary and mid-build; cancellation kills the
// in-flight build subprocess and preserves whatever earlier candidates had
// already resolved to.
//
// Copyright (c) 2025 The Lunarcade Authors
// SPDX-License-Identifier: MPL-2.0

package modhost

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/agilira/go-timecache"
	"github.com/google/uuid"
)

// ProgressHandler receives ordered progress events from a discovery pass.
// Handlers are invoked synchronously on the pass's worker goroutine so that
// event order is preserved; UI-side handlers must marshal onto their own
// thread themselves and return quickly. A panicking handler is recovered
// and logged, never allowed to abort the pass.
type ProgressHandler func(event ProgressEvent)

// OrchestratorOption customizes collaborator wiring, mainly for tests and
// for hosts with unconventional build tooling.
type OrchestratorOption func(*Orchestrator)

// WithBuildRunner replaces the external build tool invocation.
func WithBuildRunner(runner BuildRunner) OrchestratorOption {
	return func(o *Orchestrator) { o.buildRunner = runner }
}

// WithEntryPointOpener replaces the compiled-artifact opener.
func WithEntryPointOpener(opener EntryPointOpener) OrchestratorOption {
	return func(o *Orchestrator) { o.opener = opener }
}

// Orchestrator drives discovery passes over a modules directory.
//
// All collaborators are explicit: progress handlers, failure tracking, and
// the registry are owned by the orchestrator instance, never ambient
// globals. State shared with callers (registry contents, failure records)
// is exchanged through copy-out operations only.
type Orchestrator struct {
	config      HostConfig
	logger      Logger
	buildRunner BuildRunner
	opener      EntryPointOpener

	scanner   *CandidateScanner
	validator *StructuralValidator
	freshness *FreshnessChecker
	builder   *BuildOrchestrator
	loader    *ModuleLoader
	registry  *ModuleRegistry
	failures  *FailureTracker

	handlerMu sync.RWMutex
	handlers  []ProgressHandler

	// Single-flight gate: at most one pass in flight. A refresh request
	// while one is running is rejected, not interleaved.
	inFlight atomic.Bool
	closed   atomic.Bool
	state    atomic.Int32

	cancelMu   sync.Mutex
	cancelPass context.CancelFunc
}

// NewOrchestrator creates an orchestrator for the given host configuration.
// logger may be a Logger or nil.
func NewOrchestrator(config HostConfig, logger any, opts ...OrchestratorOption) *Orchestrator {
	log := NewLogger(logger)
	config = config.withDefaults()

	o := &Orchestrator{
		config: config,
		logger: log,
	}
	for _, opt := range opts {
		opt(o)
	}

	filter := NewDirectoryFilter(config.ExcludedDirs...)
	o.scanner = NewCandidateScanner(filter, config.ScanBudget.Std(), log)
	o.validator = NewStructuralValidator(config.SourcePrecheck, log)
	o.freshness = NewFreshnessChecker(log)
	if o.buildRunner == nil {
		o.buildRunner = NewCommandRunner(config.BuildCommand, log)
	}
	o.builder = NewBuildOrchestrator(o.buildRunner, config.BuildTimeout.Std(), log)
	o.loader = NewModuleLoader(o.opener, log)
	o.registry = NewModuleRegistry(log)
	o.failures = NewFailureTracker(log)
	o.state.Store(int32(StateIdle))

	return o
}

// Registry exposes the module registry for downstream launch logic.
func (o *Orchestrator) Registry() *ModuleRegistry { return o.registry }

// State returns the current (or last pass's terminal) discovery state.
func (o *Orchestrator) State() DiscoveryState {
	return DiscoveryState(o.state.Load())
}

// OnProgress registers a progress handler. Registration order is delivery
// order.
func (o *Orchestrator) OnProgress(handler ProgressHandler) {
	if handler == nil {
		return
	}
	o.handlerMu.Lock()
	o.handlers = append(o.handlers, handler)
	o.handlerMu.Unlock()
}

// DrainFailures returns and clears failure records accumulated outside a
// full pass (FindByName rejections). Discover drains into its result
// itself.
func (o *Orchestrator) DrainFailures() []FailureRecord {
	return o.failures.Drain()
}

// Cancel interrupts the pass currently in flight, if any. The in-flight
// build subprocess is killed, no further candidates are processed, and the
// worker exits promptly with an Aborted result. Safe to call at any time;
// hosts should register it as a shutdown cleanup action.
func (o *Orchestrator) Cancel() {
	o.cancelMu.Lock()
	cancel := o.cancelPass
	o.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close cancels any in-flight pass and rejects all future ones.
func (o *Orchestrator) Close() error {
	o.closed.Store(true)
	o.Cancel()
	return nil
}

// Discover runs one full discovery pass over the configured modules
// directory and returns its result. The pass runs on the calling goroutine;
// UI hosts should prefer DiscoverAsync, which supplies the background
// worker. The returned error is non-nil only when the pass could not start
// (already running, orchestrator closed); pass-fatal conditions such as an
// unavailable root are reported inside the result.
func (o *Orchestrator) Discover(ctx context.Context) (*DiscoveryResult, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	passCtx, finish := o.passContext(ctx)
	defer finish()
	return o.runPass(passCtx), nil
}

// DiscoverAsync runs one discovery pass on a dedicated background worker
// and delivers the result to onDone from that worker. The worker is created
// per refresh and discarded on completion or cancellation. Returns an error
// when the pass could not be started; onDone is then never called.
func (o *Orchestrator) DiscoverAsync(ctx context.Context, onDone func(*DiscoveryResult)) error {
	release, err := o.acquire(ctx)
	if err != nil {
		return err
	}

	// The cancel func must be registered before this call returns, not on
	// the worker: a Cancel issued right after DiscoverAsync must reach the
	// pass even when the worker has not been scheduled yet.
	passCtx, finish := o.passContext(ctx)
	safeGo(o.logger, func() {
		defer release()
		defer finish()
		result := o.runPass(passCtx)
		if onDone != nil {
			onDone(result)
		}
	})
	return nil
}

// FindByName runs a short-circuiting pass: candidates are validated, built,
// and loaded in listing order only until one declares the requested name.
// Remaining candidates are never touched. The registry is not replaced;
// rejections accumulate in the failure tracker for DrainFailures. Returns
// nil when no candidate matches.
func (o *Orchestrator) FindByName(ctx context.Context, name string) (*LoadedModule, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, finish := o.passContext(ctx)
	defer finish()

	candidates, err := o.scanner.Scan(ctx, o.config.ModulesDir)
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return nil, NewCancelledError(ctx.Err())
		}
		module := o.resolveCandidate(ctx, candidate)
		if module == nil {
			continue
		}
		if module.Name() == name {
			o.logger.Info("Module found by name",
				"module", name,
				"candidate", candidate.Name)
			return module, nil
		}
	}
	return nil, nil
}

// acquire claims the single-flight gate.
func (o *Orchestrator) acquire(ctx context.Context) (release func(), err error) {
	if o.closed.Load() {
		return nil, NewCancelledError(nil)
	}
	if ctx == nil {
		return nil, NewConfigInvalidError("nil context")
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, NewDiscoveryBusyError()
	}
	return func() { o.inFlight.Store(false) }, nil
}

// passContext derives the cancellable context of one pass and wires it to
// Cancel.
func (o *Orchestrator) passContext(ctx context.Context) (context.Context, func()) {
	passCtx, cancel := context.WithCancel(ctx)
	o.cancelMu.Lock()
	o.cancelPass = cancel
	o.cancelMu.Unlock()
	return passCtx, func() {
		o.cancelMu.Lock()
		o.cancelPass = nil
		o.cancelMu.Unlock()
		cancel()
	}
}

// runPass executes one full discovery pass. Callers hold the single-flight
// gate and have already registered ctx's cancel func through passContext.
func (o *Orchestrator) runPass(ctx context.Context) *DiscoveryResult {
	id := uuid.NewString()
	pass := &passRun{
		orchestrator: o,
		id:           id,
		result: &DiscoveryResult{
			PassID:    id,
			StartedAt: timecache.CachedTime(),
		},
	}
	o.state.Store(int32(StateIdle))

	o.logger.Info("Discovery pass starting",
		"pass_id", pass.id,
		"root", o.config.ModulesDir)

	// Scanning
	pass.advance(StateScanning, "", "Scanning modules directory")
	candidates, err := o.scanner.Scan(ctx, o.config.ModulesDir)
	if err != nil {
		if ErrorCode(err) == ErrCodeCancelled {
			return pass.abort(ctx)
		}
		return pass.fail(err)
	}
	pass.result.CandidateCount = len(candidates)

	// Validating: all candidates up front. Validation is pure and fast, so
	// the pass knows its full workload before any build starts.
	pass.advance(StateValidating, "", fmt.Sprintf("Validating %d candidates", len(candidates)))
	valid := make([]ModuleCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return pass.abort(ctx)
		}
		outcome := o.validator.Validate(candidate)
		if !outcome.IsValid {
			o.failures.Record(candidate.Name, StageValidation,
				"missing requirements: "+strings.Join(outcome.MissingRequirements, "; "))
			pass.event(StateValidating, candidate.Name, "Validation failed")
			continue
		}
		pass.event(StateValidating, candidate.Name, "Validated")
		valid = append(valid, candidate)
	}

	// Building and loading proceed per candidate in listing order, so that
	// a cancellation mid-pass preserves every earlier candidate's outcome,
	// including its loaded module. The reported state is a high-water mark
	// and never moves backwards.
	pass.advance(StateBuilding, "", fmt.Sprintf("Building %d modules", len(valid)))
	seen := make(map[string]*LoadedModule, len(valid))
	for _, candidate := range valid {
		if ctx.Err() != nil {
			return pass.abort(ctx)
		}

		if o.freshness.NeedsBuild(candidate) {
			pass.event(StateBuilding, candidate.Name, "Building")
			outcome, buildErr := o.builder.Build(ctx, candidate)
			if buildErr != nil {
				return pass.abort(ctx)
			}
			if !outcome.Succeeded {
				o.failures.Record(candidate.Name, StageBuild,
					buildFailureReason(outcome))
				pass.event(StateBuilding, candidate.Name, "Build failed")
				continue
			}
		} else {
			pass.event(StateBuilding, candidate.Name, "Build skipped, output is fresh")
		}

		pass.advance(StateLoading, candidate.Name, "Loading")
		module, loadErr := o.loader.Load(candidate)
		if loadErr != nil {
			o.failures.Record(candidate.Name, StageLoad, loadErr.Error())
			pass.event(StateLoading, candidate.Name, "Load failed")
			continue
		}

		if first, dup := seen[module.Name()]; dup {
			o.failures.Record(candidate.Name, StageLoad,
				NewDuplicateModuleError(module.Name(), first.SourcePath).Error())
			pass.event(StateLoading, candidate.Name, "Rejected duplicate module name")
			continue
		}
		seen[module.Name()] = module
		pass.result.Modules = append(pass.result.Modules, module)
		pass.event(StateLoading, candidate.Name, fmt.Sprintf("Loaded %q", module.Name()))
	}

	// Finalizing: the registry replacement is atomic from the caller's
	// point of view and happens only for completed passes.
	pass.advance(StateFinalizing, "", "Finalizing")
	o.registry.Replace(pass.result.Modules)

	pass.result.Failures = o.failures.Drain()
	pass.result.FinishedAt = timecache.CachedTime()
	pass.advance(StateDone, "", fmt.Sprintf("Discovery complete: %d modules, %d failures",
		len(pass.result.Modules), len(pass.result.Failures)))

	o.logger.Info("Discovery pass finished",
		"pass_id", pass.id,
		"modules", len(pass.result.Modules),
		"failures", len(pass.result.Failures))

	return pass.result
}

// resolveCandidate runs validate/build/load for one candidate, recording
// failures. Used by the short-circuiting FindByName path.
func (o *Orchestrator) resolveCandidate(ctx context.Context, candidate ModuleCandidate) *LoadedModule {
	outcome := o.validator.Validate(candidate)
	if !outcome.IsValid {
		o.failures.Record(candidate.Name, StageValidation,
			"missing requirements: "+strings.Join(outcome.MissingRequirements, "; "))
		return nil
	}

	if o.freshness.NeedsBuild(candidate) {
		buildOutcome, err := o.builder.Build(ctx, candidate)
		if err != nil || !buildOutcome.Succeeded {
			if err == nil {
				o.failures.Record(candidate.Name, StageBuild, buildFailureReason(buildOutcome))
			}
			return nil
		}
	}

	module, err := o.loader.Load(candidate)
	if err != nil {
		o.failures.Record(candidate.Name, StageLoad, err.Error())
		return nil
	}
	return module
}

// buildFailureReason renders a build outcome into a failure record reason.
func buildFailureReason(outcome BuildOutcome) string {
	if outcome.Log == "" {
		return fmt.Sprintf("build exited with code %d", outcome.ExitCode)
	}
	return fmt.Sprintf("build exited with code %d: %s", outcome.ExitCode, outcome.Log)
}

// passRun carries the per-pass bookkeeping of one runPass invocation.
type passRun struct {
	orchestrator *Orchestrator
	id           string
	result       *DiscoveryResult
}

// advance moves the high-water state forward (never backwards) and emits a
// progress event for the transition.
func (p *passRun) advance(state DiscoveryState, candidate, message string) {
	o := p.orchestrator
	for {
		current := o.state.Load()
		if current >= int32(state) {
			break
		}
		if o.state.CompareAndSwap(current, int32(state)) {
			break
		}
	}
	p.event(state, candidate, message)
}

// event emits one ordered progress event to all registered handlers.
func (p *passRun) event(state DiscoveryState, candidate, message string) {
	o := p.orchestrator
	o.handlerMu.RLock()
	handlers := make([]ProgressHandler, len(o.handlers))
	copy(handlers, o.handlers)
	o.handlerMu.RUnlock()

	ev := ProgressEvent{
		PassID:    p.id,
		Step:      state.StepIndex(),
		State:     state,
		Candidate: candidate,
		Message:   message,
		Timestamp: timecache.CachedTime(),
	}
	for _, handler := range handlers {
		func() {
			defer withStackRecover(o.logger)()
			handler(ev)
		}()
	}
}

// abort finishes the pass in the Aborted state, preserving everything
// resolved so far.
func (p *passRun) abort(ctx context.Context) *DiscoveryResult {
	o := p.orchestrator
	o.state.Store(int32(StateAborted))
	p.event(StateAborted, "", "Discovery aborted")

	p.result.Aborted = true
	p.result.Err = NewCancelledError(ctx.Err())
	p.result.Failures = o.failures.Drain()
	p.result.FinishedAt = timecache.CachedTime()

	o.logger.Warn("Discovery pass aborted",
		"pass_id", p.id,
		"modules", len(p.result.Modules),
		"failures", len(p.result.Failures))
	return p.result
}

// fail finishes the pass after a pass-fatal condition (unavailable root).
func (p *passRun) fail(err error) *DiscoveryResult {
	o := p.orchestrator
	o.state.Store(int32(StateAborted))
	p.event(StateAborted, "", "Discovery failed: "+err.Error())

	p.result.Err = err
	p.result.Failures = o.failures.Drain()
	p.result.FinishedAt = timecache.CachedTime()

	o.logger.Error("Discovery pass failed",
		"pass_id", p.id,
		"error", err)
	return p.result
}
