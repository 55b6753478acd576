package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renthub/laptop-bookings/internal/domain"
	"github.com/renthub/laptop-bookings/internal/otp"
	"github.com/renthub/laptop-bookings/internal/store"
	"github.com/renthub/laptop-bookings/pkg/auth"
	"github.com/renthub/laptop-bookings/pkg/config"
	"github.com/renthub/laptop-bookings/pkg/events"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTL = 30 * time.Minute
	return cfg
}

func newAuthFixture(t *testing.T) (AuthService, *store.Users) {
	t.Helper()
	users := store.NewUsers()
	return NewAuthService(users, &fakeGateway{}, events.NoopPublisher{}, testConfig()), users
}

func register(t *testing.T, svc AuthService, email string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Name:     "Alice",
		Email:    email,
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	svc, users := newAuthFixture(t)

	user := register(t, svc, "alice@example.com")
	assert.Equal(t, domain.RoleCustomer, user.Role)

	stored, ok := users.FindByEmail("alice@example.com")
	require.True(t, ok)
	assert.NotEqual(t, "hunter2hunter2", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newAuthFixture(t)
	register(t, svc, "alice@example.com")

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Name:     "Other",
		Email:    "Alice@Example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestLoginOutcomes(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := register(t, svc, "alice@example.com")

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &domain.LoginRequest{
			Email: "nobody@example.com", Password: "hunter2hunter2",
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &domain.LoginRequest{
			Email: "alice@example.com", Password: "wrongwrongwrong",
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("valid credentials return a usable token", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), &domain.LoginRequest{
			Email: "alice@example.com", Password: "hunter2hunter2",
		})
		require.NoError(t, err)

		claims, err := auth.Parse(resp.AccessToken, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.Sub)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, domain.RoleCustomer, claims.Role)
	})
}

func TestPromoteIsIdempotent(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := register(t, svc, "alice@example.com")

	promoted, err := svc.Promote(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	again, err := svc.Promote(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, again.Role)

	_, err = svc.Promote(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateUserEmailCollision(t *testing.T) {
	svc, _ := newAuthFixture(t)
	register(t, svc, "alice@example.com")
	bob := register(t, svc, "bob@example.com")

	taken := "alice@example.com"
	_, err := svc.UpdateUser(context.Background(), bob.ID, &domain.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Re-submitting your own email is not a collision.
	own := "bob@example.com"
	updated, err := svc.UpdateUser(context.Background(), bob.ID, &domain.UpdateUserRequest{Email: &own})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", updated.Email)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	svc, users := newAuthFixture(t)
	user := register(t, svc, "alice@example.com")

	before, _ := users.FindByID(user.ID)

	pw := "newpassword123"
	_, err := svc.UpdateUser(context.Background(), user.ID, &domain.UpdateUserRequest{Password: &pw})
	require.NoError(t, err)

	after, _ := users.FindByID(user.ID)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email: "alice@example.com", Password: "newpassword123",
	})
	assert.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newAuthFixture(t)
	user := register(t, svc, "alice@example.com")

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), user.ID), domain.ErrNotFound)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	users := store.NewUsers()
	gateway := &fakeGateway{}
	cfg := testConfig()
	authSvc := NewAuthService(users, gateway, events.NoopPublisher{}, cfg)
	recovery := NewRecoveryService(users, otp.NewRegistry(5*time.Minute, 5), gateway, events.NoopPublisher{})

	_, err := authSvc.Register(context.Background(), &domain.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := recovery.RequestReset(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	code, err := recovery.RequestReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	t.Run("wrong code is rejected", func(t *testing.T) {
		err := recovery.ResetPassword(context.Background(), "alice@example.com", "000000", "freshpassword")
		assert.ErrorIs(t, err, domain.ErrCodeInvalid)
	})

	t.Run("short replacement password is rejected", func(t *testing.T) {
		err := recovery.ResetPassword(context.Background(), "alice@example.com", code, "tiny")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	require.NoError(t, recovery.ResetPassword(context.Background(), "alice@example.com", code, "freshpassword"))

	t.Run("old password no longer works", func(t *testing.T) {
		_, err := authSvc.Login(context.Background(), &domain.LoginRequest{
			Email: "alice@example.com", Password: "hunter2hunter2",
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("new password works", func(t *testing.T) {
		_, err := authSvc.Login(context.Background(), &domain.LoginRequest{
			Email: "alice@example.com", Password: "freshpassword",
		})
		assert.NoError(t, err)
	})

	t.Run("code cannot be replayed", func(t *testing.T) {
		err := recovery.ResetPassword(context.Background(), "alice@example.com", code, "anotherpassword")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}
