package collab_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icdevs/inspect-mo-sub000/internal/collab"
	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
)

func TestStaticAuthCollaborator_Grants(t *testing.T) {
	auth := collab.NewStaticAuthCollaborator()
	caller := ictx.Principal{ID: "alice"}

	ok, err := auth.HasPermission(context.Background(), caller, "write")
	require.NoError(t, err)
	assert.False(t, ok)

	auth.GrantPermission("alice", "write")
	ok, err = auth.HasPermission(context.Background(), caller, "write")
	require.NoError(t, err)
	assert.True(t, ok)

	auth.RevokePermission("alice", "write")
	ok, err = auth.HasPermission(context.Background(), caller, "write")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaticAuthCollaborator_Roles(t *testing.T) {
	auth := collab.NewStaticAuthCollaborator()
	caller := ictx.Principal{ID: "bob"}

	auth.GrantRole("bob", "admin")
	ok, err := auth.HasRole(context.Background(), caller, "admin")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.HasRole(context.Background(), caller, "superadmin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaticAuthCollaborator_IsAuthenticated(t *testing.T) {
	auth := collab.NewStaticAuthCollaborator()
	assert.True(t, auth.IsAuthenticated(ictx.Principal{ID: "bob"}))
	assert.False(t, auth.IsAuthenticated(ictx.AnonymousPrincipal))
}
