package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository/postgres"
	"github.com/nedu/taskhub/internal/service"
	"github.com/nedu/taskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnectionService(t *testing.T) (*service.ConnectionService, *service.AuthService, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	txm := postgres.NewTxManager(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos, txm, cfg)
	return service.NewConnectionService(repos.Connection, authService), authService, testDB
}

func TestConnectionService_Connect(t *testing.T) {
	connectionService, authService, testDB := newConnectionService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login, err := authService.LoginWithPassword(ctx, user.Email, password)
	require.NoError(t, err)

	endpointA := uuid.New().String()
	endpointB := uuid.New().String()

	t.Run("first endpoint creates the record", func(t *testing.T) {
		userID, err := connectionService.Connect(ctx, login.Token, endpointA)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)

		endpoints, err := connectionService.Resolve(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{endpointA}, endpoints)
	})

	t.Run("second endpoint joins the same record", func(t *testing.T) {
		_, err := connectionService.Connect(ctx, login.Token, endpointB)
		require.NoError(t, err)

		endpoints, err := connectionService.Resolve(ctx, user.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{endpointA, endpointB}, endpoints)
	})

	t.Run("reconnecting an endpoint is a no-op", func(t *testing.T) {
		_, err := connectionService.Connect(ctx, login.Token, endpointA)
		require.NoError(t, err)

		endpoints, err := connectionService.Resolve(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, endpoints, 2)
	})

	t.Run("bad token is rejected", func(t *testing.T) {
		_, err := connectionService.Connect(ctx, "garbage", uuid.New().String())
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestConnectionService_Connect_ConcurrentFirstConnect(t *testing.T) {
	connectionService, authService, testDB := newConnectionService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login, err := authService.LoginWithPassword(ctx, user.Email, password)
	require.NoError(t, err)

	// All connects race against an empty registry; only one may create
	// the record, and no endpoint id may be lost.
	const n = 8
	endpoints := make([]string, n)
	for i := range endpoints {
		endpoints[i] = uuid.New().String()
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID, err := connectionService.Connect(ctx, login.Token, endpoints[i])
			assert.NoError(t, err)
			assert.Equal(t, user.ID, userID)
		}(i)
	}
	wg.Wait()

	resolved, err := connectionService.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, endpoints, resolved)

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.ConnectionRecord{}).
		Where("user_id = ? AND status = ?", user.ID, domain.StatusActive).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestConnectionService_Disconnect(t *testing.T) {
	connectionService, authService, testDB := newConnectionService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	login, err := authService.LoginWithPassword(ctx, user.Email, password)
	require.NoError(t, err)

	endpointA := uuid.New().String()
	endpointB := uuid.New().String()
	_, err = connectionService.Connect(ctx, login.Token, endpointA)
	require.NoError(t, err)
	_, err = connectionService.Connect(ctx, login.Token, endpointB)
	require.NoError(t, err)

	connectionService.Disconnect(ctx, endpointA)

	endpoints, err := connectionService.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{endpointB}, endpoints)

	// Disconnecting the same endpoint again, or one nobody tracks,
	// is silently ignored.
	connectionService.Disconnect(ctx, endpointA)
	connectionService.Disconnect(ctx, uuid.New().String())

	endpoints, err = connectionService.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{endpointB}, endpoints)
}

func TestConnectionService_Resolve_NoRecord(t *testing.T) {
	connectionService, _, _ := newConnectionService(t)

	endpoints, err := connectionService.Resolve(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, endpoints)
}
