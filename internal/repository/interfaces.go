package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
}

type CredentialRepository interface {
	Create(ctx context.Context, credential *domain.Credential) error
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Credential, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PasswordStatus) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.LoginSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoginSession, error)
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.LoginSession, error)
	Update(ctx context.Context, session *domain.LoginSession) error
}

type PrivilegeRepository interface {
	Create(ctx context.Context, privilege *domain.Privilege) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Privilege, error)
	// GetActive returns one active grant matching the user and any of
	// the given roles, or gorm.ErrRecordNotFound.
	GetActive(ctx context.Context, userID uuid.UUID, roles []domain.Role) (*domain.Privilege, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus) error
	List(ctx context.Context, filter PrivilegeFilter) ([]*domain.Privilege, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
}

type ConnectionRepository interface {
	Create(ctx context.Context, record *domain.ConnectionRecord) error
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.ConnectionRecord, error)
	// GetActiveByEndpointID finds the active record whose endpoint set
	// contains the given id.
	GetActiveByEndpointID(ctx context.Context, endpointID string) (*domain.ConnectionRecord, error)
	// AddEndpoint appends the endpoint id to the record's set unless it
	// is already present. The append is a single guarded statement so
	// concurrent connects for the same user cannot lose ids.
	AddEndpoint(ctx context.Context, recordID uuid.UUID, endpointID string) error
	// RemoveEndpoint deletes the endpoint id from the record's set.
	// Removing an absent id is a no-op.
	RemoveEndpoint(ctx context.Context, recordID uuid.UUID, endpointID string) error
}

// TaskFilter is the optional-predicate struct list queries are built
// from; zero-valued fields are skipped and the rest combine with AND.
type TaskFilter struct {
	Status        domain.TaskStatus
	TitleContains string
	CreatedBy     uuid.UUID
	AssignedTo    uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	PointsFrom    domain.TaskPoints
	PointsTo      domain.TaskPoints
	PriorityFrom  domain.PriorityLevel
	PriorityTo    domain.PriorityLevel
	Limit         int
	Page          int
}

type UserFilter struct {
	Status domain.ItemStatus
	Email  string
	Gender domain.Gender
	// Search matches any of the name fields, case-insensitively.
	Search string
	Limit  int
	Page   int
}

type PrivilegeFilter struct {
	UserID uuid.UUID
	Role   domain.Role
	Status domain.ItemStatus
	Limit  int
	Page   int
}

// TxManager runs a function against a transaction-scoped set of
// repositories. The callback's writes commit together or roll back
// together.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	User       UserRepository
	Credential CredentialRepository
	Session    SessionRepository
	Privilege  PrivilegeRepository
	Task       TaskRepository
	Connection ConnectionRepository
}
