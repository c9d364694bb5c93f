package rule

import (
	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
)

// ── RequireAuth ──────────────────────────────────────────────

type requireAuth[M any] struct{}

// RequireAuth fails iff the caller is the anonymous identity. No
// collaborator call — this is why it's safe in boundary phase.
func RequireAuth[M any]() Rule[M] { return requireAuth[M]{} }

func (requireAuth[M]) isGate() bool { return true }
func (requireAuth[M]) kind() string { return "require_auth" }
func (requireAuth[M]) evaluate(ec *ictx.EvalContext, _ M) error {
	if ec.Req.Caller.Anonymous {
		return newErr(ierr.KindAuth, "require_auth", "caller is anonymous")
	}
	return nil
}

// ── RequirePermission / RequireRole ──────────────────────────

type requirePermission[M any] struct{ name string }

// RequirePermission consults the auth collaborator's HasPermission. It is
// guard-phase only — evaluate returns phase-forbidden in boundary phase
// regardless of how it was registered (spec.md §9 resolves the ambiguity
// this way).
func RequirePermission[M any](name string) Rule[M] { return requirePermission[M]{name: name} }

func (requirePermission[M]) isGate() bool { return true }
func (r requirePermission[M]) kind() string { return "require_permission" }
func (r requirePermission[M]) evaluate(ec *ictx.EvalContext, _ M) error {
	if ec.Req.IsInspect {
		return newErr(ierr.KindPhaseForbidden, r.kind(), "require_permission(%s) cannot run in boundary phase", r.name)
	}
	if ec.Auth == nil {
		return newErr(ierr.KindAuth, r.kind(), "no-auth-provider")
	}
	ok, err := ec.Auth.HasPermission(ec.Ctx, ec.Req.Caller, r.name)
	if err != nil {
		return ierr.WrapError(ierr.KindAuth, r.kind(), err)
	}
	if !ok {
		return newErr(ierr.KindAuth, r.kind(), "caller lacks permission %q", r.name)
	}
	return nil
}

type requireRole[M any] struct{ name string }

// RequireRole consults the auth collaborator's HasRole. Guard-phase only,
// same phase-forbidden contract as RequirePermission.
func RequireRole[M any](name string) Rule[M] { return requireRole[M]{name: name} }

func (requireRole[M]) isGate() bool { return true }
func (r requireRole[M]) kind() string { return "require_role" }
func (r requireRole[M]) evaluate(ec *ictx.EvalContext, _ M) error {
	if ec.Req.IsInspect {
		return newErr(ierr.KindPhaseForbidden, r.kind(), "require_role(%s) cannot run in boundary phase", r.name)
	}
	if ec.Auth == nil {
		return newErr(ierr.KindAuth, r.kind(), "no-auth-provider")
	}
	ok, err := ec.Auth.HasRole(ec.Ctx, ec.Req.Caller, r.name)
	if err != nil {
		return ierr.WrapError(ierr.KindAuth, r.kind(), err)
	}
	if !ok {
		return newErr(ierr.KindAuth, r.kind(), "caller lacks role %q", r.name)
	}
	return nil
}

// ── BlockIngress / BlockAll ──────────────────────────────────

type blockIngress[M any] struct{}

// BlockIngress fails iff IsInspect (boundary phase); it always passes in
// guard phase. Used for methods that must never be reachable from the
// ingress fast path (e.g. ones that should only run via an inter-canister
// call, not an external message).
func BlockIngress[M any]() Rule[M] { return blockIngress[M]{} }

func (blockIngress[M]) isGate() bool { return true }
func (blockIngress[M]) kind() string { return "block_ingress" }
func (blockIngress[M]) evaluate(ec *ictx.EvalContext, _ M) error {
	if ec.Req.IsInspect {
		return newErr(ierr.KindBlocked, "block_ingress", "method is not reachable from ingress inspection")
	}
	return nil
}

type blockAll[M any] struct{}

// BlockAll always fails. Useful for retiring a method without removing
// its registration (so the rule table still documents it existed).
func BlockAll[M any]() Rule[M] { return blockAll[M]{} }

func (blockAll[M]) isGate() bool { return true }
func (blockAll[M]) kind() string { return "block_all" }
func (blockAll[M]) evaluate(_ *ictx.EvalContext, _ M) error {
	return newErr(ierr.KindBlocked, "block_all", "blocked")
}
