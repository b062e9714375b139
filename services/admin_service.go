package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fairwayleague/fantasy-golf/models"
	"github.com/fairwayleague/fantasy-golf/repositories"
)

// AdminService управляет аккаунтами: одобрение регистраций и смена ролей.
// Все операции требуют роли не ниже owner; primary_owner неприкосновенен.
type AdminService struct {
	userRepo repositories.UserRepository
}

func NewAdminService(userRepo repositories.UserRepository) *AdminService {
	return &AdminService{userRepo: userRepo}
}

func (s *AdminService) ListPendingUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *AdminService) ApproveUser(ctx context.Context, userID int) error {
	if err := s.userRepo.UpdateApproved(ctx, userID, true); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to approve user %d: %w", userID, err)
	}
	return nil
}

func (s *AdminService) ChangeRole(ctx context.Context, actor *models.User, userID int, role models.UserRole) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
	}
	// Выдать роль выше собственной нельзя, primary_owner не назначается.
	if role == models.RolePrimaryOwner || !actor.Role.AtLeast(role) {
		return ErrForbiddenOperation
	}

	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if target.Role == models.RolePrimaryOwner {
		return ErrPrimaryOwnerProtected
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return fmt.Errorf("failed to change role of user %d: %w", userID, err)
	}
	return nil
}
