package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"gorm.io/gorm"
)

type privilegeRepository struct {
	db *gorm.DB
}

func NewPrivilegeRepository(db *gorm.DB) *privilegeRepository {
	return &privilegeRepository{db: db}
}

func (r *privilegeRepository) Create(ctx context.Context, privilege *domain.Privilege) error {
	return r.db.WithContext(ctx).Create(privilege).Error
}

func (r *privilegeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Privilege, error) {
	var privilege domain.Privilege
	err := r.db.WithContext(ctx).First(&privilege, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &privilege, nil
}

func (r *privilegeRepository) GetActive(ctx context.Context, userID uuid.UUID, roles []domain.Role) (*domain.Privilege, error) {
	var privilege domain.Privilege
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role IN ? AND status = ?", userID, roles, domain.StatusActive).
		First(&privilege).Error
	if err != nil {
		return nil, err
	}
	return &privilege, nil
}

func (r *privilegeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Privilege{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *privilegeRepository) List(ctx context.Context, filter repository.PrivilegeFilter) ([]*domain.Privilege, error) {
	q := r.db.WithContext(ctx).Model(&domain.Privilege{}).Preload("User")

	if filter.UserID != uuid.Nil {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	q = paginate(q, filter.Limit, filter.Page).Order("created_at DESC")

	var privileges []*domain.Privilege
	if err := q.Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}
