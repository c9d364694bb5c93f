// Package inspector is the public surface of the request admission and
// validation engine: the Inspector Core of spec.md §4.1, plus the
// re-exported Request/Principal/collaborator types from pkg/ictx and the
// Kind/Error taxonomy from pkg/ierr, so a caller only ever imports this
// one package. The type-erased rule pipeline lives in pipeline.go, the
// configuration record in config.go.
package inspector

import (
	"context"
	"fmt"
	"sync"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
)

// Inspector holds two independent phase registries plus the collaborator
// handles and configuration resolved at construction. It is a plain
// value — spec.md §9 "no global state" — callers may construct as many
// as they need. Registration may happen at any time; RLock/Lock around
// the maps make read (InspectCheck/GuardCheck) and write (Register*)
// safe to interleave, though the intended usage is registration during
// canister init/upgrade and evaluation on every subsequent message.
type Inspector struct {
	mu            sync.RWMutex
	boundaryRules map[string]erasedEntry
	guardRules    map[string]erasedEntry
	config        Config
}

// New constructs an Inspector with empty rule tables.
func New(config Config) *Inspector {
	return &Inspector{
		boundaryRules: make(map[string]erasedEntry),
		guardRules:    make(map[string]erasedEntry),
		config:        config,
	}
}

// RegisterBoundary installs info into the boundary-phase table,
// replacing any existing registration for info.MethodName (last write
// wins, spec.md §3's Tie-break rule). Refuses registrations whose rule
// list exceeds the configured ceiling (spec.md §5).
func RegisterBoundary[M any](insp *Inspector, info MethodGuardInfo[M]) error {
	if max := insp.config.maxRulesPerMethod(); max > 0 && len(info.Rules) > max {
		return fmt.Errorf("inspector: boundary rule list for %q has %d rules, exceeds maximum %d", info.MethodName, len(info.Rules), max)
	}
	entry := erase(info)
	insp.mu.Lock()
	defer insp.mu.Unlock()
	insp.boundaryRules[info.MethodName] = entry
	return nil
}

// RegisterGuard installs info into the guard-phase table. See
// RegisterBoundary for replacement and ceiling semantics.
func RegisterGuard[M any](insp *Inspector, info MethodGuardInfo[M]) error {
	if max := insp.config.maxRulesPerMethod(); max > 0 && len(info.Rules) > max {
		return fmt.Errorf("inspector: guard rule list for %q has %d rules, exceeds maximum %d", info.MethodName, len(info.Rules), max)
	}
	entry := erase(info)
	insp.mu.Lock()
	defer insp.mu.Unlock()
	insp.guardRules[info.MethodName] = entry
	return nil
}

// RegisterBoth installs info into both phase tables — the "combined
// registration helper" spec.md §9 discusses. Per the spec's resolution
// of that section's Open Question, a phase-restricted rule registered
// this way still fails loudly if evaluated in the wrong phase; RegisterBoth
// does not suppress or rewrite phase-forbidden behavior.
func RegisterBoth[M any](insp *Inspector, info MethodGuardInfo[M]) error {
	if err := RegisterBoundary(insp, info); err != nil {
		return err
	}
	return RegisterGuard(insp, info)
}

// implicitChecks applies the global/per-kind defaults ahead of any
// explicit rule list (spec.md §4.1's configuration resolution order):
// the argument-size ceiling first (cheapest, O(1) on raw bytes), then
// the anonymous-caller gate. Both apply whether or not the method has an
// explicit registration.
func (insp *Inspector) implicitChecks(req *ictx.Request) error {
	if max, ok := insp.config.maxArgSize(req.IsQuery); ok {
		if n := len(req.ArgBytes); n > max {
			return ierr.NewError(ierr.KindSize, "default_max_arg_size", "arg_bytes length %d exceeds maximum %d", n, max)
		}
	}
	if req.Caller.Anonymous && !insp.config.allowAnonymous(req.IsQuery) {
		return ierr.NewError(ierr.KindAuth, "allow_anonymous", "caller is anonymous")
	}
	return nil
}

func (insp *Inspector) evalContext(ctx context.Context, req *ictx.Request) *ictx.EvalContext {
	return &ictx.EvalContext{
		Ctx:       ctx,
		Req:       req,
		Auth:      insp.config.AuthProvider,
		RateLimit: insp.config.RateLimit,
		Limits:    insp.config.StructuralLimits,
	}
}

func (insp *Inspector) reportRejection(ctx context.Context, req *ictx.Request, err error) {
	if !insp.config.AuditLog || insp.config.TelemetrySink == nil {
		return
	}
	insp.config.TelemetrySink.RecordRejection(ctx, ictx.TelemetryEvent{
		MethodName: req.MethodName,
		Caller:     req.Caller,
		IsInspect:  req.IsInspect,
		Err:        err,
	})
}

// InspectCheck is the boundary-phase entry point (spec.md §4.1).
// Precondition: req.IsInspect is true. Strictly synchronous: neither this
// method nor any rule it evaluates may block on collaborator I/O —
// RequirePermission/RequireRole self-enforce that by failing with
// KindPhaseForbidden instead.
func (insp *Inspector) InspectCheck(ctx context.Context, req *ictx.Request) error {
	if err := insp.implicitChecks(req); err != nil {
		insp.reportRejection(ctx, req, err)
		return err
	}

	insp.mu.RLock()
	entry, ok := insp.boundaryRules[req.MethodName]
	insp.mu.RUnlock()
	if !ok {
		return nil
	}

	if err := entry.run(insp.evalContext(ctx, req)); err != nil {
		insp.reportRejection(ctx, req, err)
		return err
	}
	return nil
}

// GuardCheck is the execution-phase entry point (spec.md §4.1).
// Precondition: req.IsInspect is false. Rules evaluated here may consult
// async collaborators (auth, rate limiter).
func (insp *Inspector) GuardCheck(ctx context.Context, req *ictx.Request) error {
	if err := insp.implicitChecks(req); err != nil {
		insp.reportRejection(ctx, req, err)
		return err
	}

	insp.mu.RLock()
	entry, ok := insp.guardRules[req.MethodName]
	insp.mu.RUnlock()
	if !ok {
		return nil
	}

	if err := entry.run(insp.evalContext(ctx, req)); err != nil {
		insp.reportRejection(ctx, req, err)
		return err
	}
	return nil
}

// InspectOnlyArgSize returns the raw byte length of req.ArgBytes: O(1),
// side-effect-free, so a host can apply a cheap upper bound before typed
// decoding (spec.md §4.1, §8 property 5).
func (insp *Inspector) InspectOnlyArgSize(req *ictx.Request) int {
	return len(req.ArgBytes)
}
