package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"github.com/nedu/taskhub/internal/repository/postgres"
	"github.com/nedu/taskhub/internal/service"
	"github.com/nedu/taskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivilegeService_RequireRole(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	privilegeService := service.NewPrivilegeService(repos.Privilege, repos.User)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	plain, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.GrantRole(t, testDB.DB, admin.ID, domain.RoleAdmin, admin.ID)

	t.Run("active grant passes", func(t *testing.T) {
		err := privilegeService.RequireAdmin(ctx, admin.ID)
		require.NoError(t, err)
	})

	t.Run("no grant is denied", func(t *testing.T) {
		err := privilegeService.RequireAdmin(ctx, plain.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidPermission)
	})

	t.Run("role must match", func(t *testing.T) {
		err := privilegeService.RequireRole(ctx, admin.ID, domain.RoleSuperAdmin)
		assert.ErrorIs(t, err, domain.ErrInvalidPermission)
	})
}

func TestPrivilegeService_Assign(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	privilegeService := service.NewPrivilegeService(repos.Privilege, repos.User)
	ctx := context.Background()

	granter, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	target, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	privilege, err := privilegeService.Assign(ctx, target.ID, domain.RoleAdmin, granter.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, privilege.UserID)
	assert.Equal(t, domain.RoleAdmin, privilege.Role)
	assert.Equal(t, granter.ID, privilege.AssignedBy)
	assert.Equal(t, domain.StatusActive, privilege.Status)

	t.Run("duplicate active grant rejected", func(t *testing.T) {
		_, err := privilegeService.Assign(ctx, target.ID, domain.RoleAdmin, granter.ID)
		assert.ErrorIs(t, err, domain.ErrDuplicateRole)
	})

	t.Run("different role for same user allowed", func(t *testing.T) {
		_, err := privilegeService.Assign(ctx, target.ID, domain.RoleSuperAdmin, granter.ID)
		require.NoError(t, err)
	})

	t.Run("unknown target user", func(t *testing.T) {
		_, err := privilegeService.Assign(ctx, uuid.New(), domain.RoleAdmin, granter.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPrivilegeService_Revoke(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	privilegeService := service.NewPrivilegeService(repos.Privilege, repos.User)
	ctx := context.Background()

	granter, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	target, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	privilege := testutil.GrantRole(t, testDB.DB, target.ID, domain.RoleAdmin, granter.ID)

	require.NoError(t, privilegeService.RequireAdmin(ctx, target.ID))

	require.NoError(t, privilegeService.Revoke(ctx, privilege.ID))

	// A revoked grant no longer authorizes anything.
	err := privilegeService.RequireAdmin(ctx, target.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidPermission)

	// Revoking twice is harmless.
	require.NoError(t, privilegeService.Revoke(ctx, privilege.ID))

	// After revocation the same role can be granted again.
	_, err = privilegeService.Assign(ctx, target.ID, domain.RoleAdmin, granter.ID)
	require.NoError(t, err)
}

func TestPrivilegeService_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	privilegeService := service.NewPrivilegeService(repos.Privilege, repos.User)
	ctx := context.Background()

	granter, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	a, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	b, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.GrantRole(t, testDB.DB, a.ID, domain.RoleAdmin, granter.ID)
	testutil.GrantRole(t, testDB.DB, b.ID, domain.RoleSuperAdmin, granter.ID)

	byRole, err := privilegeService.List(ctx, repository.PrivilegeFilter{Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, byRole, 1)
	assert.Equal(t, a.ID, byRole[0].UserID)

	byUser, err := privilegeService.List(ctx, repository.PrivilegeFilter{UserID: b.ID})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, domain.RoleSuperAdmin, byUser[0].Role)
}
