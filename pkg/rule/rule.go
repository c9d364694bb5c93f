// Package rule implements every built-in rule kind from spec.md §3/§4.2:
// the predicate and error message for each. Rules are generic over the
// method's payload type M so a TextSize rule declared for one method's
// string field is exactly as type-safe as one declared for another
// method's — the erasure that lets the Inspector store all of them in one
// table happens one layer up, in pkg/inspector.
//
// Every concrete rule kind is an unexported struct implementing Rule[M];
// this keeps the rule set a closed sum (spec.md §9: "an interface/virtual-
// call hierarchy with one class per rule kind is equivalent" to a tagged
// union, the key property being that only pkg/rule can add a new kind).
package rule

import (
	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
)

// Rule is one validation rule over a method's payload type M. evaluate and
// isGate are unexported so only rule kinds defined in this package can
// implement Rule — callers build rules via the constructors below
// (TextSize, RequireAuth, CustomCheck, ...), never by hand.
type Rule[M any] interface {
	evaluate(ec *ictx.EvalContext, payload M) error
	// isGate reports whether this rule belongs to the "gate" class
	// (RequireAuth, RequirePermission, RequireRole, BlockIngress,
	// BlockAll) that spec.md's rule evaluation ordering bullet 2 requires
	// to run before any payload-touching rule.
	isGate() bool
	// kind names the rule for diagnostics and Error.Rule.
	kind() string
}

// Evaluate runs rule against payload under ec. Exported as a free function
// (rather than calling the unexported interface method directly) so
// pkg/inspector — which only ever holds a Rule[M] value, never a concrete
// type — can invoke it without needing access to the unexported method
// set from a different package.
func Evaluate[M any](r Rule[M], ec *ictx.EvalContext, payload M) error {
	return r.evaluate(ec, payload)
}

// IsGate reports whether r is a gate-class rule.
func IsGate[M any](r Rule[M]) bool { return r.isGate() }

// Kind names the rule kind for diagnostics.
func Kind[M any](r Rule[M]) string { return r.kind() }

func newErr(kind ierr.Kind, rule, format string, args ...interface{}) *ierr.Error {
	return ierr.NewError(kind, rule, format, args...)
}
