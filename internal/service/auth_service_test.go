package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository/postgres"
	"github.com/nedu/taskhub/internal/service"
	"github.com/nedu/taskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Signup(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	txm := postgres.NewTxManager(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos, txm, cfg)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.SignupInput
		setup   func()
		wantErr error
	}{
		{
			name: "successful signup",
			input: service.SignupInput{
				FirstName: "Ada",
				LastName:  "Obi",
				Email:     "ada@example.com",
				Phone:     "08011111111",
				Gender:    domain.GenderFemale,
				Password:  "password123",
			},
		},
		{
			name: "duplicate email",
			input: service.SignupInput{
				FirstName: "Ada",
				LastName:  "Obi",
				Email:     "taken@example.com",
				Phone:     "08022222222",
				Gender:    domain.GenderFemale,
				Password:  "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("taken@example.com").
					Build(t, testDB.DB)
			},
			wantErr: domain.ErrDuplicateEmail,
		},
		{
			name: "duplicate phone",
			input: service.SignupInput{
				FirstName: "Ada",
				LastName:  "Obi",
				Email:     "ada2@example.com",
				Phone:     "08033333333",
				Gender:    domain.GenderFemale,
				Password:  "password123",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithPhone("08033333333").
					Build(t, testDB.DB)
			},
			wantErr: domain.ErrDuplicatePhone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			result, err := authService.Signup(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, result.User)
			assert.Equal(t, tt.input.Email, result.User.Email)
			assert.NotEmpty(t, result.Token)

			// Signup opens a session, so the token authenticates.
			session, err := authService.Authenticate(ctx, result.Token)
			require.NoError(t, err)
			assert.Equal(t, result.User.ID, session.UserID)
		})
	}
}

func TestAuthService_LoginWithPassword(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	txm := postgres.NewTxManager(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos, txm, cfg)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := authService.LoginWithPassword(ctx, user.Email, password)
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := authService.LoginWithPassword(ctx, user.Email, "wrong-password")
		assert.ErrorIs(t, err, domain.ErrInvalidLogin)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := authService.LoginWithPassword(ctx, "nobody@example.com", password)
		assert.ErrorIs(t, err, domain.ErrInvalidLogin)
	})
}

func TestAuthService_Logout(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	txm := postgres.NewTxManager(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos, txm, cfg)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	result, err := authService.LoginWithPassword(ctx, user.Email, password)
	require.NoError(t, err)

	session, err := authService.Logout(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.False(t, session.Active)
	assert.True(t, session.LoggedOut)

	// The token points at a switched-off session now.
	_, err = authService.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// Logging out again finds no active session and is not an error.
	session, err = authService.Logout(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestAuthService_MultipleSessions(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	txm := postgres.NewTxManager(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos, txm, cfg)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	first, err := authService.LoginWithPassword(ctx, user.Email, password)
	require.NoError(t, err)
	second, err := authService.LoginWithPassword(ctx, user.Email, password)
	require.NoError(t, err)

	// Two logins, two independent live sessions.
	firstSession, err := authService.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	secondSession, err := authService.Authenticate(ctx, second.Token)
	require.NoError(t, err)
	assert.NotEqual(t, firstSession.ID, secondSession.ID)
}

func TestAuthService_Authenticate_ExpiredSession(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	txm := postgres.NewTxManager(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos, txm, cfg)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
	result, err := authService.LoginWithPassword(ctx, user.Email, password)
	require.NoError(t, err)

	// Push the session past its validity window without switching it
	// off; the token itself still parses.
	require.NoError(t, testDB.DB.Model(&domain.LoginSession{}).
		Where("user_id = ?", user.ID).
		Update("validity_end", time.Now().Add(-time.Minute)).Error)

	_, err = authService.Authenticate(ctx, result.Token)
	require.Error(t, err)

	// Expired and invalid share a kind, so compare response codes.
	var appErr *domain.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.ErrSessionExpired.Code, appErr.Code)
}

func TestAuthService_Authenticate_BadTokens(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	txm := postgres.NewTxManager(testDB.DB)
	cfg := testutil.TestConfig()
	authService := service.NewAuthService(repos, txm, cfg)
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		_, err := authService.Authenticate(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		otherCfg := testutil.TestConfig()
		otherCfg.JWTSecret = "a-different-secret-entirely"
		other := service.NewAuthService(repos, txm, otherCfg)

		user, password := testutil.NewUserBuilder().Build(t, testDB.DB)
		result, err := other.LoginWithPassword(ctx, user.Email, password)
		require.NoError(t, err)

		_, err = authService.Authenticate(ctx, result.Token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
