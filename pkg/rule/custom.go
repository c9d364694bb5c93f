package rule

import (
	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
)

// ── CustomCheck ──────────────────────────────────────────────

type customCheck[M any] struct {
	predicate func(ictx.CustomCheckArgs, M) error
}

// CustomCheck returns whatever predicate returns, verbatim, wrapped only
// in the "custom" Kind so it participates in the closed error taxonomy.
// predicate receives the full request plus the already-projected payload;
// it self-polices on IsInspect since CustomCheck is permitted in both
// phases (spec.md §4.1).
func CustomCheck[M any](predicate func(ictx.CustomCheckArgs, M) error) Rule[M] {
	return customCheck[M]{predicate: predicate}
}

func (customCheck[M]) isGate() bool { return false }
func (customCheck[M]) kind() string { return "custom_check" }
func (r customCheck[M]) evaluate(ec *ictx.EvalContext, payload M) error {
	args := ictx.CustomCheckArgs{Req: ec.Req, IsInspect: ec.Req.IsInspect}
	if err := r.predicate(args, payload); err != nil {
		if ie, ok := err.(*ierr.Error); ok {
			return ie
		}
		return ierr.WrapError(ierr.KindCustom, r.kind(), err)
	}
	return nil
}

// ── DynamicAuth ──────────────────────────────────────────────

type dynamicAuth[M any] struct {
	predicate func(ictx.DynamicAuthArgs) error
}

// DynamicAuth is a boundary-safe identity predicate: it only ever sees
// caller identity and phase, never the payload or a collaborator handle,
// so it is explicitly permitted in boundary phase (spec.md §4.2).
func DynamicAuth[M any](predicate func(ictx.DynamicAuthArgs) error) Rule[M] {
	return dynamicAuth[M]{predicate: predicate}
}

func (dynamicAuth[M]) isGate() bool { return true }
func (dynamicAuth[M]) kind() string { return "dynamic_auth" }
func (r dynamicAuth[M]) evaluate(ec *ictx.EvalContext, _ M) error {
	args := ictx.DynamicAuthArgs{Caller: ec.Req.Caller, IsInspect: ec.Req.IsInspect}
	if err := r.predicate(args); err != nil {
		if ie, ok := err.(*ierr.Error); ok {
			return ie
		}
		return ierr.WrapError(ierr.KindAuth, r.kind(), err)
	}
	return nil
}
