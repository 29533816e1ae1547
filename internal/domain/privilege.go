package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

// AdminRoles is the role set accepted on every administrative path.
var AdminRoles = []Role{RoleAdmin, RoleSuperAdmin}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Privilege is a role grant. Revoking sets status to deactivated so
// the grant history is retained for audit.
type Privilege struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	Role       Role       `json:"role" gorm:"not null"`
	AssignedBy uuid.UUID  `json:"assignedBy" gorm:"type:uuid;not null"`
	Status     ItemStatus `json:"status" gorm:"not null;default:'active'"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
