package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"gorm.io/gorm"
)

type credentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *credentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, credential *domain.Credential) error {
	return r.db.WithContext(ctx).Create(credential).Error
}

func (r *credentialRepository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Credential, error) {
	var credential domain.Credential
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.PasswordActive).
		First(&credential).Error
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

func (r *credentialRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PasswordStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Credential{}).
		Where("id = ?", id).
		Update("status", status).Error
}
