package inspector

import (
	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
	"github.com/icdevs/inspect-mo-sub000/pkg/rule"
)

// MethodGuardInfo is one method's declared validation: its rule list over
// its own concrete payload type M, and the Extractor that recovers M from
// the host's typed-message union. M never survives past erase — the
// Inspector only ever stores the erasedEntry below.
//
// Extractor must be total: for the TypedMsg variant belonging to
// MethodName it must return the real payload, and for any other variant it
// may return any caller-chosen fallback, because erase never calls
// Extractor on a mismatched variant — it detects the mismatch first and
// refuses with a dispatch error (spec.md §4.3, §8 property 7).
type MethodGuardInfo[M any] struct {
	MethodName string
	IsQuery    bool
	Rules      []rule.Rule[M]
	Extractor  func(ictx.TypedMsg) M
}

// erasedEntry is what the Inspector's registries actually hold: the
// method name and query-ness for bookkeeping, plus one closure over the
// uniform EvalContext. M has been erased by erase below and cannot leak
// back out (spec.md §4.3: "the registry stores only
// InspectionRequest → Result closures").
type erasedEntry struct {
	methodName string
	isQuery    bool
	run        func(ec *ictx.EvalContext) error
}

// erase wraps info into an erasedEntry. Gate-class rules (RequireAuth,
// RequirePermission, RequireRole, BlockIngress, BlockAll, DynamicAuth) are
// stably partitioned ahead of every other rule — spec.md §4.1 ordering
// rule 2 — so a rejected caller never reaches a payload-touching rule;
// within each partition, declaration order is preserved.
func erase[M any](info MethodGuardInfo[M]) erasedEntry {
	ordered := make([]rule.Rule[M], 0, len(info.Rules))
	for _, r := range info.Rules {
		if rule.IsGate(r) {
			ordered = append(ordered, r)
		}
	}
	for _, r := range info.Rules {
		if !rule.IsGate(r) {
			ordered = append(ordered, r)
		}
	}

	methodName := info.MethodName
	extractor := info.Extractor

	return erasedEntry{
		methodName: methodName,
		isQuery:    info.IsQuery,
		run: func(ec *ictx.EvalContext) error {
			if ec.Req.TypedMsg == nil || ec.Req.TypedMsg.MethodName() != methodName {
				return ierr.NewError(ierr.KindDispatch, "dispatch", "method/message mismatch: expected %q", methodName)
			}
			payload := extractor(ec.Req.TypedMsg)
			for _, r := range ordered {
				if err := rule.Evaluate(r, ec, payload); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
