// Package ictx defines the request/context types shared by pkg/rule and
// pkg/inspector: the uniform InspectionRequest, the opaque caller
// Principal, and the collaborator capability sets from spec.md §4.5. It is
// a leaf package on purpose — pkg/rule needs these types to evaluate
// RequireAuth/RequirePermission/CustomCheck predicates, and pkg/inspector
// needs them to hold collaborator handles and build requests; putting them
// in pkg/inspector itself would make pkg/rule and pkg/inspector import
// each other. pkg/inspector re-exports the public surface via type
// aliases so callers only ever write "inspector.Request", not
// "ictx.Request".
package ictx

import (
	"context"
	"time"
)

// TypedMsg is the host's decoded-argument union. Each method's payload
// type implements MethodName with its own method's name, which is how the
// Inspector detects a method/message mismatch (spec.md §4.3, §8 property 7)
// without reflection.
type TypedMsg interface {
	MethodName() string
}

// Principal is InspectMo's opaque, principal-like caller identity.
type Principal struct {
	ID        string
	Role      string
	Groups    []string
	Anonymous bool
}

// AnonymousPrincipal is the distinguished anonymous identity. Its ID uses
// the real Internet Computer anonymous principal's textual form, since
// InspectMo's upstream (icdevs/inspect-mo) is an IC canister library.
var AnonymousPrincipal = Principal{ID: "2vxsx-fae", Anonymous: true}

// Request is the single uniform record crossing the Inspector boundary —
// spec.md §3's InspectionRequest.
type Request struct {
	MethodName string
	Caller     Principal
	ArgBytes   []byte
	TypedMsg   TypedMsg
	IsQuery    bool
	// IsInspect distinguishes the boundary phase (true, synchronous, no
	// async collaborator calls permitted) from the guard phase (false).
	IsInspect bool
	Cycles    *uint64
	Deadline  *time.Time
}

// ── External collaborators (spec.md §4.5) ───────────────────

// AuthCollaborator is the auth capability set. IsAuthenticated is the only
// method callable from boundary phase; HasPermission/HasRole require
// async work in a real host and must return phase-forbidden there — rule
// predicates enforce that, not the collaborator itself, so a misbehaving
// collaborator implementation can't silently violate phase isolation.
type AuthCollaborator interface {
	HasPermission(ctx context.Context, caller Principal, name string) (bool, error)
	HasRole(ctx context.Context, caller Principal, name string) (bool, error)
	IsAuthenticated(caller Principal) bool
}

// RateLimitDecision is the result of a rate limiter Check.
type RateLimitDecision struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string
}

// RateLimiter is the rate-limit capability set. Guard-phase only.
type RateLimiter interface {
	Check(ctx context.Context, caller Principal, methodName string) (RateLimitDecision, error)
	Record(ctx context.Context, caller Principal, methodName string)
}

// TelemetryEvent is what gets reported to a TelemetrySink on rejection
// (and, if a host wants, on every evaluation) when Config.AuditLog is set.
type TelemetryEvent struct {
	MethodName string
	Caller     Principal
	IsInspect  bool
	Err        error // nil means "passed"
}

// TelemetrySink is a fire-and-forget event recorder. Absent by default.
type TelemetrySink interface {
	RecordRejection(ctx context.Context, event TelemetryEvent)
}

// StructuralLimits bounds a structural (DVM) traversal: spec.md §4.4's
// max_depth/max_size, applied by internal/structwalk.
type StructuralLimits struct {
	MaxDepth int
	MaxSize  int64
}

// EvalContext is what every rule's Evaluate method receives alongside the
// method-specific payload: the full request, the collaborator handles,
// and the default structural limits.
type EvalContext struct {
	Ctx       context.Context
	Req       *Request
	Auth      AuthCollaborator
	RateLimit RateLimiter
	Limits    StructuralLimits
}

// CustomCheckArgs is what a CustomCheck predicate receives: the full
// request, so it can self-police on IsInspect.
type CustomCheckArgs struct {
	Req       *Request
	IsInspect bool
}

// DynamicAuthArgs is the narrower input a DynamicAuth predicate receives —
// only identity and context, which is why DynamicAuth is explicitly
// permitted in boundary phase (spec.md §4.2).
type DynamicAuthArgs struct {
	Caller    Principal
	IsInspect bool
}
