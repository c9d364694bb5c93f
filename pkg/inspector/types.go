package inspector

import "github.com/icdevs/inspect-mo-sub000/pkg/ictx"

// Re-exports of pkg/ictx's public surface, so a host importing only
// pkg/inspector never needs to know pkg/ictx exists — it is an
// implementation-sharing detail between this package and pkg/rule (see
// pkg/ictx's package doc for why it had to be factored out).

type (
	Request           = ictx.Request
	Principal         = ictx.Principal
	TypedMsg          = ictx.TypedMsg
	AuthCollaborator  = ictx.AuthCollaborator
	RateLimiter       = ictx.RateLimiter
	RateLimitDecision = ictx.RateLimitDecision
	TelemetrySink     = ictx.TelemetrySink
	TelemetryEvent    = ictx.TelemetryEvent
	StructuralLimits  = ictx.StructuralLimits
)

// AnonymousPrincipal is the distinguished anonymous caller identity.
var AnonymousPrincipal = ictx.AnonymousPrincipal
