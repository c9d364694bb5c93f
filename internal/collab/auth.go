// Package collab provides the external collaborator implementations
// cmd/exampleserver wires into an Inspector: auth, rate limiting, and
// telemetry. None of this lives in pkg/inspector itself — the core only
// ever holds the ictx.AuthCollaborator / ictx.RateLimiter / ictx.TelemetrySink
// interfaces, per spec.md §4.5's "polymorphic over their implementations"
// design. This package plays the role the teacher's internal/auth package
// played for its HTTP auth-provider chain, adapted to InspectMo's
// capability-set shape instead of a request/Identity chain.
package collab

import (
	"context"
	"sync"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
)

// StaticAuthCollaborator grants permissions and roles from an in-memory
// table, the way the teacher's APIKeyProvider held its key set: a
// sync.RWMutex-guarded map mutable at runtime via Grant/Revoke, suitable
// for examples and tests rather than a persisted role store.
type StaticAuthCollaborator struct {
	mu          sync.RWMutex
	permissions map[string]map[string]bool // caller ID -> permission name -> granted
	roles       map[string]map[string]bool // caller ID -> role name -> granted
}

// NewStaticAuthCollaborator returns an auth collaborator with no grants.
func NewStaticAuthCollaborator() *StaticAuthCollaborator {
	return &StaticAuthCollaborator{
		permissions: make(map[string]map[string]bool),
		roles:       make(map[string]map[string]bool),
	}
}

// GrantPermission records that caller has permission name.
func (c *StaticAuthCollaborator) GrantPermission(callerID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.permissions[callerID] == nil {
		c.permissions[callerID] = make(map[string]bool)
	}
	c.permissions[callerID][name] = true
}

// GrantRole records that caller holds role name.
func (c *StaticAuthCollaborator) GrantRole(callerID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roles[callerID] == nil {
		c.roles[callerID] = make(map[string]bool)
	}
	c.roles[callerID][name] = true
}

// RevokePermission undoes a prior GrantPermission.
func (c *StaticAuthCollaborator) RevokePermission(callerID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.permissions[callerID], name)
}

// HasPermission implements ictx.AuthCollaborator.
func (c *StaticAuthCollaborator) HasPermission(_ context.Context, caller ictx.Principal, name string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.permissions[caller.ID][name], nil
}

// HasRole implements ictx.AuthCollaborator.
func (c *StaticAuthCollaborator) HasRole(_ context.Context, caller ictx.Principal, name string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles[caller.ID][name], nil
}

// IsAuthenticated implements ictx.AuthCollaborator. It is the only method
// spec.md §4.5 permits calling from boundary phase, which is why it
// never touches the grant tables: it is a pure function of the caller
// identity the host already resolved.
func (c *StaticAuthCollaborator) IsAuthenticated(caller ictx.Principal) bool {
	return !caller.Anonymous
}
