package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"gorm.io/gorm"
)

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *connectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, record *domain.ConnectionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *connectionRepository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.ConnectionRecord, error) {
	var record domain.ConnectionRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.StatusActive).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *connectionRepository) GetActiveByEndpointID(ctx context.Context, endpointID string) (*domain.ConnectionRecord, error) {
	var record domain.ConnectionRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND endpoint_ids @> ?", domain.StatusActive, jsonString(endpointID)).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// AddEndpoint appends in a single guarded statement: the containment
// check and the append happen in one UPDATE, so two near-simultaneous
// connects for the same user cannot lose an id and reconnecting the
// same endpoint id is a no-op.
func (r *connectionRepository) AddEndpoint(ctx context.Context, recordID uuid.UUID, endpointID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.ConnectionRecord{}).
		Where("id = ? AND NOT endpoint_ids @> ?", recordID, jsonString(endpointID)).
		Update("endpoint_ids", gorm.Expr("endpoint_ids || ?::jsonb", jsonArray(endpointID))).Error
}

func (r *connectionRepository) RemoveEndpoint(ctx context.Context, recordID uuid.UUID, endpointID string) error {
	return r.db.WithContext(ctx).
		Model(&domain.ConnectionRecord{}).
		Where("id = ?", recordID).
		Update("endpoint_ids", gorm.Expr("endpoint_ids - ?", endpointID)).Error
}

// jsonString renders a value for jsonb containment (@>) against an
// array of strings.
func jsonString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func jsonArray(v string) string {
	b, _ := json.Marshal([]string{v})
	return string(b)
}
