package service_test

import (
	"context"
	"testing"

	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"github.com/nedu/taskhub/internal/repository/postgres"
	"github.com/nedu/taskhub/internal/service"
	"github.com/nedu/taskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateStatus(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	txm := postgres.NewTxManager(testDB.DB)
	userService := service.NewUserService(repos, txm)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	updated, err := userService.UpdateStatus(ctx, user.ID, domain.StatusDeactivated)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeactivated, updated.Status)

	updated, err = userService.UpdateStatus(ctx, user.ID, domain.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, updated.Status)

	_, err = userService.UpdateStatus(ctx, user.ID, "suspended")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUserService_EnsureSuperAdmin(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	txm := postgres.NewTxManager(testDB.DB)
	userService := service.NewUserService(repos, txm)
	ctx := context.Background()

	require.NoError(t, userService.EnsureSuperAdmin(ctx))

	grants, err := repos.Privilege.List(ctx, repository.PrivilegeFilter{
		Role:   domain.RoleSuperAdmin,
		Status: domain.StatusActive,
	})
	require.NoError(t, err)
	require.Len(t, grants, 1)

	// Second boot finds the grant and creates nothing.
	require.NoError(t, userService.EnsureSuperAdmin(ctx))

	grants, err = repos.Privilege.List(ctx, repository.PrivilegeFilter{
		Role:   domain.RoleSuperAdmin,
		Status: domain.StatusActive,
	})
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}
