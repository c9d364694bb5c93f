package inspector

import "github.com/icdevs/inspect-mo-sub000/pkg/ictx"

// defaultMaxRulesPerMethod is the recommended ceiling from spec.md §5's
// resource limits: registration of a longer rule list is refused.
const defaultMaxRulesPerMethod = 64

// MethodKindDefaults are the implicit rules a phase falls back to when a
// method has no explicit registration, or the per-kind ceiling prepended
// ahead of an explicit registration's own rules (spec.md §4.1's
// configuration resolution order).
type MethodKindDefaults struct {
	AllowAnonymous *bool
	MaxArgSize     *int
}

// Config is the Inspector's construction-time configuration record,
// spec.md §6.
type Config struct {
	// AllowAnonymous is the global default for RequireAuth-class implicit
	// checks when neither QueryDefaults nor UpdateDefaults override it.
	// nil means false.
	AllowAnonymous *bool

	// DefaultMaxArgSize caps req.ArgBytes length implicitly, before any
	// typed work, unless overridden per method kind. nil means unbounded.
	DefaultMaxArgSize *int

	// AuthProvider backs RequirePermission/RequireRole's collaborator
	// calls (RequireAuth makes none). nil means every permission/role rule fails with
	// KindAuth "no-auth-provider" (spec.md §6).
	AuthProvider ictx.AuthCollaborator

	// RateLimit backs rate-limit checks. nil means rate-limit rules always
	// pass.
	RateLimit ictx.RateLimiter

	// QueryDefaults and UpdateDefaults are the per-method-kind implicit
	// defaults layered between a method's explicit rules and the global
	// defaults above.
	QueryDefaults  MethodKindDefaults
	UpdateDefaults MethodKindDefaults

	// DevelopmentMode permits more verbose error detail; it must never
	// surface collaborator secrets or raw payload content regardless.
	DevelopmentMode bool

	// AuditLog, when true, reports every rejection to TelemetrySink.
	AuditLog      bool
	TelemetrySink ictx.TelemetrySink

	// StructuralLimits bounds every DVM traversal (CandyDepth, CandySize,
	// NestedValidation) that a rule doesn't override with its own explicit
	// bound. A zero value means unbounded on that dimension, which callers
	// handling untrusted input should never leave unset (spec.md §5).
	StructuralLimits ictx.StructuralLimits

	// MaxRulesPerMethod overrides defaultMaxRulesPerMethod; 0 uses the
	// default, negative disables the check (not recommended).
	MaxRulesPerMethod int
}

func (c Config) maxRulesPerMethod() int {
	if c.MaxRulesPerMethod == 0 {
		return defaultMaxRulesPerMethod
	}
	return c.MaxRulesPerMethod
}

func (c Config) kindDefaults(isQuery bool) MethodKindDefaults {
	if isQuery {
		return c.QueryDefaults
	}
	return c.UpdateDefaults
}

func (c Config) allowAnonymous(isQuery bool) bool {
	if d := c.kindDefaults(isQuery); d.AllowAnonymous != nil {
		return *d.AllowAnonymous
	}
	if c.AllowAnonymous != nil {
		return *c.AllowAnonymous
	}
	return false
}

func (c Config) maxArgSize(isQuery bool) (int, bool) {
	if d := c.kindDefaults(isQuery); d.MaxArgSize != nil {
		return *d.MaxArgSize, true
	}
	if c.DefaultMaxArgSize != nil {
		return *c.DefaultMaxArgSize, true
	}
	return 0, false
}
