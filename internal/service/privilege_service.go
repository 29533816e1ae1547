package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"gorm.io/gorm"
)

// PrivilegeService answers "does this user hold one of these roles"
// and manages role grants. Checks only see active grants; a revoked
// grant fails the next check.
type PrivilegeService struct {
	privileges repository.PrivilegeRepository
	users      repository.UserRepository
}

func NewPrivilegeService(privileges repository.PrivilegeRepository, users repository.UserRepository) *PrivilegeService {
	return &PrivilegeService{privileges: privileges, users: users}
}

// RequireRole fails unless the user holds an active grant for one of
// the given roles.
func (s *PrivilegeService) RequireRole(ctx context.Context, userID uuid.UUID, roles ...domain.Role) error {
	_, err := s.privileges.GetActive(ctx, userID, roles)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInvalidPermission
		}
		return err
	}
	return nil
}

// RequireAdmin is the fixed admin-or-super-admin check used by every
// administrative path.
func (s *PrivilegeService) RequireAdmin(ctx context.Context, userID uuid.UUID) error {
	return s.RequireRole(ctx, userID, domain.AdminRoles...)
}

// Assign grants a role. Assigning a role the target already actively
// holds is rejected rather than duplicated.
func (s *PrivilegeService) Assign(ctx context.Context, targetUser uuid.UUID, role domain.Role, assignedBy uuid.UUID) (*domain.Privilege, error) {
	if _, err := s.users.GetByID(ctx, targetUser); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ResourceNotFound("user")
		}
		return nil, err
	}

	_, err := s.privileges.GetActive(ctx, targetUser, []domain.Role{role})
	if err == nil {
		return nil, domain.ErrDuplicateRole
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	privilege := &domain.Privilege{
		ID:         uuid.New(),
		UserID:     targetUser,
		Role:       role,
		AssignedBy: assignedBy,
		Status:     domain.StatusActive,
	}
	if err := s.privileges.Create(ctx, privilege); err != nil {
		return nil, err
	}
	return privilege, nil
}

// Revoke deactivates a grant. Revoking an already-deactivated grant
// is a no-op.
func (s *PrivilegeService) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.privileges.UpdateStatus(ctx, id, domain.StatusDeactivated)
}

func (s *PrivilegeService) List(ctx context.Context, filter repository.PrivilegeFilter) ([]*domain.Privilege, error) {
	return s.privileges.List(ctx, filter)
}
