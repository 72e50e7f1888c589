package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"

	"github.com/elskow/sphere-accounts/internal/config"
	"github.com/elskow/sphere-accounts/internal/database"
)

func newSQLiteRepository(t *testing.T) Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	manager, err := database.Open(sqlite.Open(dsn), &config.DatabaseConfig{LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	require.NoError(t, manager.DB().AutoMigrate(&Account{}))
	return NewRepository(manager.DB())
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "alice1", "alice@example.com", StatusPendingVerification, false)
	seedAccount(t, repo, "bobby1", "bob@example.com", StatusActive, true)

	got, err := repo.GetAccountByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice1", got.Username)
	assert.Equal(t, StatusPendingVerification, got.Status)
	assert.False(t, got.IsEmailVerified)

	matches, err := repo.FindByUsernameOrEmail(ctx, "alice1", "bob@example.com")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = repo.FindByLoginIdentifier(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, alice.ID, matches[0].ID)

	matches, err = repo.FindByLoginIdentifier(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = repo.GetAccountByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRepository_UniqueConstraints(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	seedAccount(t, repo, "alice1", "alice@example.com", StatusActive, true)

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{name: "duplicate username", username: "alice1", email: "other@example.com"},
		{name: "duplicate email", username: "alice2", email: "alice@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateAccount(ctx, &Account{
				ID:           uuid.New(),
				Username:     tt.username,
				Email:        tt.email,
				PasswordHash: "x",
				Status:       StatusPendingVerification,
			})
			assert.ErrorIs(t, err, ErrAccountExists)
		})
	}
}

func TestRepository_UpdateProfile(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	rating := 4.5
	alice := &Account{
		ID:                   uuid.New(),
		Username:             "alice1",
		Email:                "alice@example.com",
		PasswordHash:         "digest",
		IsEmailVerified:      true,
		Status:               StatusActive,
		SphereCreditBalance:  120,
		AvgRating:            &rating,
		TotalReviewsReceived: 7,
	}
	require.NoError(t, repo.CreateAccount(ctx, alice))

	at := time.Now().Add(time.Minute).UTC().Truncate(time.Second)
	updated, err := repo.UpdateProfile(ctx, alice.ID, ProfileUpdate{
		FirstName: ptr("Alice"),
		Pincode:   ptr("560001"),
	}, at)
	require.NoError(t, err)
	assert.Equal(t, "Alice", *updated.FirstName)
	assert.Equal(t, "560001", *updated.Pincode)
	assert.Nil(t, updated.City)
	assert.True(t, updated.UpdatedAt.Equal(at))

	updated, err = repo.UpdateProfile(ctx, alice.ID, ProfileUpdate{City: ptr("Pune")}, at)
	require.NoError(t, err)
	assert.Equal(t, "Alice", *updated.FirstName)
	assert.Equal(t, "Pune", *updated.City)
	assert.Equal(t, alice.Username, updated.Username)
	assert.Equal(t, alice.PasswordHash, updated.PasswordHash)
	assert.Equal(t, int64(120), updated.SphereCreditBalance)
	require.NotNil(t, updated.AvgRating)
	assert.Equal(t, 4.5, *updated.AvgRating)
	assert.Equal(t, 7, updated.TotalReviewsReceived)
	assert.Equal(t, StatusActive, updated.Status)
	assert.True(t, updated.IsEmailVerified)

	_, err = repo.UpdateProfile(ctx, uuid.New(), ProfileUpdate{City: ptr("Pune")}, at)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestService_WithSQLiteRepository(t *testing.T) {
	svc := newTestServiceWithRepo(t, newSQLiteRepository(t))
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterInput{Username: "alice1", Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice1", Email: "alice@example.com", Password: testPassword})
	failure := requireFailure(t, err, ClassConflict, CodeUserExists)
	assert.Equal(t, []string{"username", "email"}, fieldNames(failure.Fields))

	_, err = svc.Login(ctx, LoginInput{LoginIdentifier: "alice@example.com", Password: testPassword})
	requireFailure(t, err, ClassForbidden, CodeEmailNotVerified)

	profile, err := svc.UpdateProfile(ctx, Identity{UserID: account.ID}, ProfileUpdate{Bio: ptr("Hello")})
	require.NoError(t, err)
	assert.Equal(t, "Hello", *profile.Bio)
}
