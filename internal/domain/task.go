package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskBacklog    TaskStatus = "backlog"
	TaskToDo       TaskStatus = "to_do"
	TaskInProgress TaskStatus = "in_progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskSuspended  TaskStatus = "suspended"
	TaskCompleted  TaskStatus = "completed"
	TaskDeleted    TaskStatus = "deleted"
	TaskApproved   TaskStatus = "approved"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskBacklog, TaskToDo, TaskInProgress, TaskBlocked,
		TaskSuspended, TaskCompleted, TaskDeleted, TaskApproved:
		return true
	}
	return false
}

// TaskPoints is the enumerated difficulty weight of a task.
type TaskPoints int

const (
	PointsBasic       TaskPoints = 1
	PointsMedium      TaskPoints = 2
	PointsChallenging TaskPoints = 3
	PointsHard        TaskPoints = 4
	PointsVeryHard    TaskPoints = 5
)

func (p TaskPoints) IsValid() bool {
	return p >= PointsBasic && p <= PointsVeryHard
}

// PriorityLevel ranks how urgent a task is.
type PriorityLevel int

const (
	PriorityLow           PriorityLevel = 1
	PriorityMedium        PriorityLevel = 2
	PriorityImportant     PriorityLevel = 3
	PriorityVeryImportant PriorityLevel = 4
	PriorityIndispensable PriorityLevel = 5
)

func (p PriorityLevel) IsValid() bool {
	return p >= PriorityLow && p <= PriorityIndispensable
}

// TaskNote is one entry in a task's append-only note trail. Notes are
// never edited or removed once written.
type TaskNote struct {
	Text   string    `json:"text"`
	MadeBy uuid.UUID `json:"madeBy"`
	Time   time.Time `json:"time"`
}

type TaskNotes []TaskNote

type Task struct {
	ID                     uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title                  string        `json:"title" gorm:"not null;index"`
	Points                 TaskPoints    `json:"points" gorm:"not null"`
	Priority               PriorityLevel `json:"priority" gorm:"not null"`
	CreatedBy              uuid.UUID     `json:"createdBy" gorm:"type:uuid;not null;index"`
	AssignedTo             uuid.UUID     `json:"assignedTo" gorm:"type:uuid;not null;index"`
	ExpectedCompletionDate time.Time     `json:"expectedCompletionDate" gorm:"not null"`
	ActualCompletionDate   *time.Time    `json:"actualCompletionDate"`
	Notes                  TaskNotes     `json:"notes" gorm:"type:jsonb;serializer:json;not null;default:'[]'"`
	Status                 TaskStatus    `json:"status" gorm:"not null;default:'to_do'"`
	CreatedAt              time.Time     `json:"createdAt"`
	UpdatedAt              time.Time     `json:"updatedAt"`

	Creator  *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Assignee *User `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo"`
}

// EventType names the workflow notifications pushed over the live
// transport when a task changes state.
type EventType string

const (
	EventNewTask       EventType = "new-task"
	EventTaskUpdate    EventType = "task-update"
	EventTaskCompleted EventType = "task-completed"
	EventTaskApproval  EventType = "task-approval"
)
