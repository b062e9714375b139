package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwayleague/fantasy-golf/models"
)

func registerUser(t *testing.T, svc AuthService, username, email, password string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	user := registerUser(t, svc, "alice", "  Alice@Example.COM ", "secret-pass")

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleMember, user.Role)
	assert.False(t, user.Approved)
	assert.Empty(t, user.PasswordHash)

	stored, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "secret-pass", stored.PasswordHash)
}

func TestRegisterShortPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	registerUser(t, svc, "alice", "alice@example.com", "secret-pass")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "secret-pass",
	})
	assert.ErrorIs(t, err, ErrUserEmailConflict)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)
	user := registerUser(t, svc, "alice", "alice@example.com", "secret-pass")

	// До одобрения вход закрыт.
	_, err := svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrAccountNotApproved)

	require.NoError(t, repo.UpdateApproved(context.Background(), user.ID, true))

	logged, err := svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Empty(t, logged.PasswordHash)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)
	user := registerUser(t, svc, "alice", "alice@example.com", "secret-pass")
	require.NoError(t, repo.UpdateApproved(context.Background(), user.ID, true))

	_, err := svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestAdminApproveAndChangeRole(t *testing.T) {
	repo := newFakeUserRepo()
	authSvc := NewAuthService(repo)
	adminSvc := NewAdminService(repo)

	user := registerUser(t, authSvc, "bob", "bob@example.com", "secret-pass")

	pending, err := adminSvc.ListPendingUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Empty(t, pending[0].PasswordHash)

	require.NoError(t, adminSvc.ApproveUser(context.Background(), user.ID))

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, stored.Approved)

	owner := &models.User{ID: 100, Role: models.RoleOwner}
	require.NoError(t, adminSvc.ChangeRole(context.Background(), owner, user.ID, models.RoleLeagueAdmin))

	stored, err = repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleLeagueAdmin, stored.Role)
}

func TestChangeRoleRestrictions(t *testing.T) {
	repo := newFakeUserRepo()
	authSvc := NewAuthService(repo)
	adminSvc := NewAdminService(repo)

	user := registerUser(t, authSvc, "bob", "bob@example.com", "secret-pass")
	owner := &models.User{ID: 100, Role: models.RoleOwner}

	// Нельзя назначить primary_owner.
	err := adminSvc.ChangeRole(context.Background(), owner, user.ID, models.RolePrimaryOwner)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	// Нельзя выдать роль выше собственной.
	leagueAdminActor := &models.User{ID: 101, Role: models.RoleLeagueAdmin}
	err = adminSvc.ChangeRole(context.Background(), leagueAdminActor, user.ID, models.RoleOwner)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	// primary_owner нельзя менять.
	protected := registerUser(t, authSvc, "root", "root@example.com", "secret-pass")
	require.NoError(t, repo.UpdateRole(context.Background(), protected.ID, models.RolePrimaryOwner))
	err = adminSvc.ChangeRole(context.Background(), owner, protected.ID, models.RoleMember)
	assert.ErrorIs(t, err, ErrPrimaryOwnerProtected)
}
