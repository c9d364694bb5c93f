// Package api wires two example canister methods — greet (a query) and
// transfer (an update) — to the Inspector so cmd/exampleserver has
// something concrete to inspect. The methods themselves are stand-ins;
// the point is exercising RegisterBoundary/RegisterGuard/InspectCheck/
// GuardCheck end to end over real JSON-decoded payloads.
package api

import "github.com/icdevs/inspect-mo-sub000/pkg/inspector"

// GreetArgs is the payload for the greet query method.
type GreetArgs struct {
	Text string `json:"text"`
}

func (GreetArgs) MethodName() string { return "greet" }

// TransferArgs is the payload for the transfer update method.
type TransferArgs struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func (TransferArgs) MethodName() string { return "transfer" }

// decodeGreet and decodeTransfer adapt a generic inspector.TypedMsg into
// the method's own concrete type — this is the Extractor every
// inspector.MethodGuardInfo needs, and the one place a dispatch mismatch
// would otherwise panic a type assertion, which is exactly why
// pkg/inspector checks MethodName() before ever calling it.
func decodeGreet(msg inspector.TypedMsg) GreetArgs {
	return msg.(GreetArgs)
}

func decodeTransfer(msg inspector.TypedMsg) TransferArgs {
	return msg.(TransferArgs)
}
