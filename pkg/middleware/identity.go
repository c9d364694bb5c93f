// Package middleware carries the resolved caller Principal through a
// request's context.Context between the example host's auth chain
// (internal/auth) and the point where it builds an inspector.Request.
package middleware

import (
	"context"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
)

type contextKey string

const principalKey contextKey = "principal"

// SetPrincipal stores the resolved Principal in the context. Called by
// the example host after internal/auth.ProviderChain.Authenticate.
func SetPrincipal(ctx context.Context, principal ictx.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal retrieves the resolved Principal from the context,
// returning ictx.AnonymousPrincipal if none was set.
func GetPrincipal(ctx context.Context) ictx.Principal {
	if v, ok := ctx.Value(principalKey).(ictx.Principal); ok {
		return v
	}
	return ictx.AnonymousPrincipal
}
