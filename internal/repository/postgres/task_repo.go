package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"gorm.io/gorm"
)

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Assignee").
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*domain.Task, error) {
	q := r.db.WithContext(ctx).Model(&domain.Task{}).Preload("Assignee")

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TitleContains != "" {
		q = q.Where("title ILIKE ?", "%"+filter.TitleContains+"%")
	}
	if filter.CreatedBy != uuid.Nil {
		q = q.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.AssignedTo != uuid.Nil {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		q = q.Where("expected_completion_date BETWEEN ? AND ?", filter.StartDate, filter.EndDate)
	}
	if filter.PointsFrom != 0 && filter.PointsTo != 0 {
		q = q.Where("points BETWEEN ? AND ?", filter.PointsFrom, filter.PointsTo)
	}
	if filter.PriorityFrom != 0 && filter.PriorityTo != 0 {
		q = q.Where("priority BETWEEN ? AND ?", filter.PriorityFrom, filter.PriorityTo)
	}

	q = paginate(q, filter.Limit, filter.Page).Order("created_at DESC")

	var tasks []*domain.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
