package api

import (
	"github.com/icdevs/inspect-mo-sub000/pkg/inspector"
	"github.com/icdevs/inspect-mo-sub000/pkg/rule"
)

const transferPermission = "transfer"

// RegisterMethods installs greet and transfer's rule sets into insp. greet
// is boundary-only (it's a query: cheap, synchronous, anonymous-friendly,
// length-capped). transfer is boundary-and-guard: the boundary phase
// rejects obviously-malformed calls before they reach the replicated
// execution path, and the guard phase additionally requires an
// authenticated caller holding the transfer permission.
func RegisterMethods(insp *inspector.Inspector) error {
	maxText := 280
	if err := inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[GreetArgs]{
		MethodName: "greet",
		IsQuery:    true,
		Extractor:  decodeGreet,
		Rules: []rule.Rule[GreetArgs]{
			rule.TextSize(func(a GreetArgs) string { return a.Text }, nil, &maxText),
		},
	}); err != nil {
		return err
	}

	minAmount := uint64(1)
	boundaryRules := []rule.Rule[TransferArgs]{
		rule.RequireAuth[TransferArgs](),
		rule.TextSize(func(a TransferArgs) string { return a.To }, nil, intPtr(64)),
		rule.NatValue(func(a TransferArgs) uint64 { return a.Amount }, &minAmount, nil),
	}
	if err := inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[TransferArgs]{
		MethodName: "transfer",
		IsQuery:    false,
		Extractor:  decodeTransfer,
		Rules:      boundaryRules,
	}); err != nil {
		return err
	}

	if err := inspector.RegisterGuard(insp, inspector.MethodGuardInfo[TransferArgs]{
		MethodName: "transfer",
		IsQuery:    false,
		Extractor:  decodeTransfer,
		Rules: []rule.Rule[TransferArgs]{
			rule.RequireAuth[TransferArgs](),
			rule.RequirePermission[TransferArgs](transferPermission),
		},
	}); err != nil {
		return err
	}

	return nil
}

func intPtr(n int) *int { return &n }
