package metadata_test

import (
	"context"
	"testing"

	"github.com/bionicotaku/hidescore-services-catalog/internal/metadata"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestFromContext_DefaultsToAnonymous(t *testing.T) {
	id := metadata.FromContext(context.Background())
	require.Equal(t, metadata.RoleAnonymous, id.Role)
	require.False(t, id.Authenticated())

	_, ok := metadata.CurrentUser(context.Background())
	require.False(t, ok)
	require.False(t, metadata.IsAdmin(context.Background()))
}

func TestInjectRoundTrip(t *testing.T) {
	userID := uuid.New()
	ctx := metadata.Inject(context.Background(), metadata.Identity{UserID: userID, Role: metadata.RoleUser})

	id, ok := metadata.CurrentUser(ctx)
	require.True(t, ok)
	require.Equal(t, userID, id.UserID)
	require.False(t, metadata.IsAdmin(ctx))

	adminCtx := metadata.Inject(context.Background(), metadata.Identity{UserID: uuid.New(), Role: metadata.RoleAdmin})
	require.True(t, metadata.IsAdmin(adminCtx))
}

func TestAdminRoleWithoutUserIsNotAuthenticated(t *testing.T) {
	ctx := metadata.Inject(context.Background(), metadata.Identity{Role: metadata.RoleAdmin})
	require.False(t, metadata.IsAdmin(ctx))
}
