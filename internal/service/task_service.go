package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"gorm.io/gorm"
)

// Notifier pushes a workflow event to every live endpoint of one
// user. Delivery is best-effort: implementations log failures and
// never surface them to the triggering mutation.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event domain.EventType, task *domain.Task)
}

// TaskService owns the task state machine and its transition guards.
// Guard checks run before any write; every accepted change emits one
// workflow event at the counterpart of whoever made it.
type TaskService struct {
	tasks    repository.TaskRepository
	users    repository.UserRepository
	notifier Notifier
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

// SetNotifier injects the push channel once it exists; wired at
// startup, before the server accepts traffic.
func (s *TaskService) SetNotifier(n Notifier) {
	s.notifier = n
}

type CreateTaskInput struct {
	Title                  string
	Points                 domain.TaskPoints
	Priority               domain.PriorityLevel
	AssignedTo             uuid.UUID
	ExpectedCompletionDate time.Time
	Note                   string
	// Status may override the to_do default at creation, but only with
	// a pre-start status.
	Status domain.TaskStatus
}

type UpdateTaskInput struct {
	Title                  *string
	Points                 *domain.TaskPoints
	Priority               *domain.PriorityLevel
	AssignedTo             *uuid.UUID
	ExpectedCompletionDate *time.Time
	ActualCompletionDate   *time.Time
	Status                 domain.TaskStatus
	Note                   string
}

// Create records a new task authored by an admin. The route guard has
// already established the actor's role; created_by is always the
// acting admin. The assignee is told about their new task.
func (s *TaskService) Create(ctx context.Context, createdBy uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	if _, err := s.users.GetByID(ctx, input.AssignedTo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ResourceNotFound("assignee")
		}
		return nil, err
	}

	status := domain.TaskToDo
	if input.Status != "" {
		if input.Status != domain.TaskBacklog && input.Status != domain.TaskToDo {
			return nil, domain.InvalidValue("status")
		}
		status = input.Status
	}

	task := &domain.Task{
		ID:                     uuid.New(),
		Title:                  input.Title,
		Points:                 input.Points,
		Priority:               input.Priority,
		CreatedBy:              createdBy,
		AssignedTo:             input.AssignedTo,
		ExpectedCompletionDate: input.ExpectedCompletionDate,
		Notes:                  domain.TaskNotes{},
		Status:                 status,
	}
	if input.Note != "" {
		task.Notes = append(task.Notes, domain.TaskNote{
			Text:   input.Note,
			MadeBy: createdBy,
			Time:   time.Now(),
		})
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.notify(ctx, task.AssignedTo, domain.EventNewTask, task)
	return task, nil
}

// AdminUpdate applies an administrative change, including approval.
// The assignee is notified of whatever changed.
func (s *TaskService) AdminUpdate(ctx context.Context, taskID, actor uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.getForMutation(ctx, taskID, "Updating an approved task")
	if err != nil {
		return nil, err
	}

	if err := s.applyUpdate(task, actor, input); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.notify(ctx, task.AssignedTo, eventForStatus(input.Status), task)
	return task, nil
}

// AssigneeUpdate progresses a task on behalf of the user it is
// assigned to. Only the assignee may touch it, and approval is an
// admin-only transition no matter what else the request carries. The
// creator is notified of the progress.
func (s *TaskService) AssigneeUpdate(ctx context.Context, taskID, actor uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	if input.Status == domain.TaskApproved {
		return nil, domain.Forbidden("You are not allowed to approve a task")
	}

	task, err := s.getForMutation(ctx, taskID, "Updating an approved task")
	if err != nil {
		return nil, err
	}
	if task.AssignedTo != actor {
		return nil, domain.Forbidden("You are not allowed to update this task")
	}

	// Assignees progress status, record completion and leave notes;
	// the task's definition stays with its creator.
	trimmed := UpdateTaskInput{
		Status:               input.Status,
		Note:                 input.Note,
		ActualCompletionDate: input.ActualCompletionDate,
	}
	if err := s.applyUpdate(task, actor, trimmed); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.notify(ctx, task.CreatedBy, eventForStatus(input.Status), task)
	return task, nil
}

// Delete retires a task administratively. Approved tasks are
// permanent; anything earlier moves to the deleted status, keeping
// the row for audit.
func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	task, err := s.getForMutation(ctx, taskID, "Deleting an approved task")
	if err != nil {
		return err
	}

	task.Status = domain.TaskDeleted
	return s.tasks.Update(ctx, task)
}

func (s *TaskService) Get(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ResourceNotFound("Task")
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, filter repository.TaskFilter) ([]*domain.Task, error) {
	return s.tasks.List(ctx, filter)
}

// getForMutation loads a task and applies the approved-is-final
// guard shared by every mutation path.
func (s *TaskService) getForMutation(ctx context.Context, taskID uuid.UUID, action string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ResourceNotFound("Task")
		}
		return nil, err
	}
	if task.Status == domain.TaskApproved {
		return nil, domain.ActionNotPermitted(action)
	}
	return task, nil
}

func (s *TaskService) applyUpdate(task *domain.Task, actor uuid.UUID, input UpdateTaskInput) error {
	if input.Status != "" {
		if !input.Status.IsValid() {
			return domain.InvalidValue("status")
		}
		task.Status = input.Status
	}
	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Points != nil {
		if !input.Points.IsValid() {
			return domain.InvalidValue("points")
		}
		task.Points = *input.Points
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return domain.InvalidValue("priority")
		}
		task.Priority = *input.Priority
	}
	if input.AssignedTo != nil {
		task.AssignedTo = *input.AssignedTo
	}
	if input.ExpectedCompletionDate != nil {
		task.ExpectedCompletionDate = *input.ExpectedCompletionDate
	}
	if input.ActualCompletionDate != nil {
		task.ActualCompletionDate = input.ActualCompletionDate
	}
	if input.Note != "" {
		task.Notes = append(task.Notes, domain.TaskNote{
			Text:   input.Note,
			MadeBy: actor,
			Time:   time.Now(),
		})
	}
	return nil
}

func (s *TaskService) notify(ctx context.Context, userID uuid.UUID, event domain.EventType, task *domain.Task) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, event, task)
}

// eventForStatus picks the event type for an accepted update: the
// terminal transitions get their own names, everything else is a
// generic update.
func eventForStatus(status domain.TaskStatus) domain.EventType {
	switch status {
	case domain.TaskCompleted:
		return domain.EventTaskCompleted
	case domain.TaskApproved:
		return domain.EventTaskApproval
	default:
		return domain.EventTaskUpdate
	}
}
