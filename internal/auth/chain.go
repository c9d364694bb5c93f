// Package auth resolves an HTTP request to an ictx.Principal for the
// example host (cmd/exampleserver). It is not part of the Inspector
// core — spec.md's request/caller model is transport-agnostic, but
// something upstream of it has to turn an inbound HTTP call into a
// Principal, and this package is that something.
//
// Ships two providers:
//   - APIKeyProvider — static key validation
//   - ServiceAccountProvider — HMAC-signed service tokens for
//     agent-to-agent or CI-triggered calls
package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
)

// Provider authenticates an HTTP request and resolves an ictx.Principal.
//
// Contract:
//   - (*Principal, nil) → authenticated, stop walking the chain
//   - (nil, nil) → this provider doesn't handle this request, try next
//   - (nil, error) → authentication was attempted but failed, reject
type Provider interface {
	Name() string
	Authenticate(ctx context.Context, r *http.Request) (*ictx.Principal, error)
	Enabled() bool
}

// ProviderChain tries providers in registration order until one resolves
// a Principal. Requests matched by no provider resolve to
// ictx.AnonymousPrincipal, not an error.
type ProviderChain struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewProviderChain creates an empty provider chain.
func NewProviderChain() *ProviderChain {
	return &ProviderChain{providers: make([]Provider, 0)}
}

// RegisterProvider adds a provider to the end of the chain.
func (c *ProviderChain) RegisterProvider(provider Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers = append(c.providers, provider)
	log.Info().
		Str("provider", provider.Name()).
		Bool("enabled", provider.Enabled()).
		Msg("auth provider registered")
}

// Authenticate walks the chain in order. A request matched by no enabled
// provider resolves to ictx.AnonymousPrincipal rather than an error —
// anonymity is a valid caller identity the Inspector itself may reject.
func (c *ProviderChain) Authenticate(ctx context.Context, r *http.Request) (ictx.Principal, error) {
	c.mu.RLock()
	providers := make([]Provider, len(c.providers))
	copy(providers, c.providers)
	c.mu.RUnlock()

	for _, p := range providers {
		if !p.Enabled() {
			continue
		}
		principal, err := p.Authenticate(ctx, r)
		if err != nil {
			log.Debug().Str("provider", p.Name()).Err(err).Msg("auth provider rejected request")
			return ictx.Principal{}, err
		}
		if principal != nil {
			log.Debug().Str("provider", p.Name()).Str("principal", principal.ID).Msg("request authenticated")
			return *principal, nil
		}
	}

	return ictx.AnonymousPrincipal, nil
}

// ListProviders returns the names of all registered providers (diagnostics).
func (c *ProviderChain) ListProviders() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}
