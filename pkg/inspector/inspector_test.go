package inspector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
	"github.com/icdevs/inspect-mo-sub000/pkg/inspector"
	"github.com/icdevs/inspect-mo-sub000/pkg/rule"
)

// ── test fixtures: a two-method host union ──────────────────

type m1Args struct{}

func (m1Args) MethodName() string { return "m1" }

type m2Args struct{ Text string }

func (m2Args) MethodName() string { return "m2" }

type m4Args struct{}

func (m4Args) MethodName() string { return "m4" }

func identityM1(tm ictx.TypedMsg) m1Args {
	if v, ok := tm.(m1Args); ok {
		return v
	}
	return m1Args{}
}

func identityM2(tm ictx.TypedMsg) m2Args {
	if v, ok := tm.(m2Args); ok {
		return v
	}
	return m2Args{}
}

func identityM4(tm ictx.TypedMsg) m4Args {
	if v, ok := tm.(m4Args); ok {
		return v
	}
	return m4Args{}
}

func boundaryReq(method string, typed ictx.TypedMsg, caller ictx.Principal, argBytes []byte) *ictx.Request {
	return &ictx.Request{MethodName: method, Caller: caller, ArgBytes: argBytes, TypedMsg: typed, IsInspect: true}
}

func guardReq(method string, typed ictx.TypedMsg, caller ictx.Principal) *ictx.Request {
	return &ictx.Request{MethodName: method, Caller: caller, TypedMsg: typed, IsInspect: false}
}

// ── S1: auth, boundary ───────────────────────────────────────

func TestS1_RequireAuthBoundary(t *testing.T) {
	insp := inspector.New(inspector.Config{})
	require.NoError(t, inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[m1Args]{
		MethodName: "m1",
		Rules:      []rule.Rule[m1Args]{rule.RequireAuth[m1Args]()},
		Extractor:  identityM1,
	}))

	err := insp.InspectCheck(context.Background(), boundaryReq("m1", m1Args{}, ictx.AnonymousPrincipal, nil))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindAuth))

	err = insp.InspectCheck(context.Background(), boundaryReq("m1", m1Args{}, ictx.Principal{ID: "alice"}, nil))
	assert.NoError(t, err)
}

// ── S2: text size ────────────────────────────────────────────

func TestS2_TextSize(t *testing.T) {
	insp := inspector.New(inspector.Config{})
	min, max := 1, 10
	require.NoError(t, inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[m2Args]{
		MethodName: "m2",
		Rules: []rule.Rule[m2Args]{
			rule.TextSize(func(m m2Args) string { return m.Text }, &min, &max),
		},
		Extractor: identityM2,
	}))

	caller := ictx.Principal{ID: "alice"}

	err := insp.InspectCheck(context.Background(), boundaryReq("m2", m2Args{Text: ""}, caller, nil))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindSize))

	err = insp.InspectCheck(context.Background(), boundaryReq("m2", m2Args{Text: "hello"}, caller, nil))
	assert.NoError(t, err)

	err = insp.InspectCheck(context.Background(), boundaryReq("m2", m2Args{Text: "this is too long"}, caller, nil))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindSize))
}

// ── S4: phase-forbidden ──────────────────────────────────────

type staticAuth struct{ granted map[string]bool }

func (a staticAuth) HasPermission(_ context.Context, _ ictx.Principal, name string) (bool, error) {
	return a.granted[name], nil
}
func (a staticAuth) HasRole(_ context.Context, _ ictx.Principal, _ string) (bool, error) {
	return false, nil
}
func (a staticAuth) IsAuthenticated(caller ictx.Principal) bool { return !caller.Anonymous }

func TestS4_PhaseForbidden(t *testing.T) {
	insp := inspector.New(inspector.Config{AuthProvider: staticAuth{granted: map[string]bool{"write": true}}})
	caller := ictx.Principal{ID: "alice"}

	require.NoError(t, inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[m4Args]{
		MethodName: "m4",
		Rules:      []rule.Rule[m4Args]{rule.RequirePermission[m4Args]("write")},
		Extractor:  identityM4,
	}))
	err := insp.InspectCheck(context.Background(), boundaryReq("m4", m4Args{}, caller, nil))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindPhaseForbidden))

	require.NoError(t, inspector.RegisterGuard(insp, inspector.MethodGuardInfo[m4Args]{
		MethodName: "m4",
		Rules:      []rule.Rule[m4Args]{rule.RequirePermission[m4Args]("write")},
		Extractor:  identityM4,
	}))
	err = insp.GuardCheck(context.Background(), guardReq("m4", m4Args{}, caller))
	assert.NoError(t, err)
}

// ── S5: short-circuit order ──────────────────────────────────

func TestS5_ShortCircuit(t *testing.T) {
	insp := inspector.New(inspector.Config{})
	min := 5
	calls := 0
	require.NoError(t, inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[m2Args]{
		MethodName: "m2",
		Rules: []rule.Rule[m2Args]{
			rule.TextSize(func(m m2Args) string { return m.Text }, &min, nil),
			rule.CustomCheck(func(_ ictx.CustomCheckArgs, _ m2Args) error {
				calls++
				return nil
			}),
		},
		Extractor: identityM2,
	}))

	err := insp.InspectCheck(context.Background(), boundaryReq("m2", m2Args{Text: "ab"}, ictx.Principal{ID: "alice"}, nil))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindSize))
	assert.Equal(t, 0, calls)
}

// ── S6: arg-size fast path ───────────────────────────────────

func TestS6_ArgSizeFastPath(t *testing.T) {
	max := 1024
	insp := inspector.New(inspector.Config{DefaultMaxArgSize: &max})

	err := insp.InspectCheck(context.Background(), boundaryReq("unregistered", nil, ictx.Principal{ID: "alice"}, make([]byte, 2048)))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindSize))
}

// ── invariant 5: inspect_only_arg_size ───────────────────────

func TestInspectOnlyArgSize(t *testing.T) {
	insp := inspector.New(inspector.Config{})
	req := boundaryReq("whatever", nil, ictx.Principal{ID: "alice"}, make([]byte, 42))
	assert.Equal(t, 42, insp.InspectOnlyArgSize(req))
}

// ── invariant 6: registration replacement ────────────────────

func TestRegistrationReplacement(t *testing.T) {
	insp := inspector.New(inspector.Config{})
	require.NoError(t, inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[m1Args]{
		MethodName: "m1",
		Rules:      []rule.Rule[m1Args]{rule.BlockAll[m1Args]()},
		Extractor:  identityM1,
	}))
	err := insp.InspectCheck(context.Background(), boundaryReq("m1", m1Args{}, ictx.Principal{ID: "alice"}, nil))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindBlocked))

	require.NoError(t, inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[m1Args]{
		MethodName: "m1",
		Rules:      nil,
		Extractor:  identityM1,
	}))
	err = insp.InspectCheck(context.Background(), boundaryReq("m1", m1Args{}, ictx.Principal{ID: "alice"}, nil))
	assert.NoError(t, err)
}

// ── invariant 7: accessor totality / dispatch mismatch ───────

func TestDispatchMismatch(t *testing.T) {
	insp := inspector.New(inspector.Config{})
	require.NoError(t, inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[m1Args]{
		MethodName: "m1",
		Rules:      []rule.Rule[m1Args]{rule.BlockAll[m1Args]()},
		Extractor:  identityM1,
	}))

	// m2's typed message passed against m1's registration.
	err := insp.InspectCheck(context.Background(), boundaryReq("m1", m2Args{Text: "x"}, ictx.Principal{ID: "alice"}, nil))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindDispatch))
}

// ── invariant 3: phase isolation ──────────────────────────────

type countingAuth struct{ calls int }

func (a *countingAuth) HasPermission(_ context.Context, _ ictx.Principal, _ string) (bool, error) {
	a.calls++
	return true, nil
}
func (a *countingAuth) HasRole(_ context.Context, _ ictx.Principal, _ string) (bool, error) {
	a.calls++
	return true, nil
}
func (a *countingAuth) IsAuthenticated(caller ictx.Principal) bool { return !caller.Anonymous }

func TestPhaseIsolation_NoCollaboratorCallsInBoundary(t *testing.T) {
	auth := &countingAuth{}
	insp := inspector.New(inspector.Config{AuthProvider: auth})
	require.NoError(t, inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[m4Args]{
		MethodName: "m4",
		Rules:      []rule.Rule[m4Args]{rule.RequirePermission[m4Args]("write")},
		Extractor:  identityM4,
	}))

	err := insp.InspectCheck(context.Background(), boundaryReq("m4", m4Args{}, ictx.Principal{ID: "alice"}, nil))
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindPhaseForbidden))
	assert.Equal(t, 0, auth.calls)
}

// ── invariant 1: determinism ──────────────────────────────────

func TestDeterminism(t *testing.T) {
	insp := inspector.New(inspector.Config{})
	min, max := 1, 10
	require.NoError(t, inspector.RegisterBoundary(insp, inspector.MethodGuardInfo[m2Args]{
		MethodName: "m2",
		Rules:      []rule.Rule[m2Args]{rule.TextSize(func(m m2Args) string { return m.Text }, &min, &max)},
		Extractor:  identityM2,
	}))

	req := boundaryReq("m2", m2Args{Text: "toolongforsure"}, ictx.Principal{ID: "alice"}, nil)
	err1 := insp.InspectCheck(context.Background(), req)
	err2 := insp.InspectCheck(context.Background(), req)
	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, err1.Error(), err2.Error())
}
