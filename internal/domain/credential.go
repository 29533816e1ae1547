package domain

import (
	"time"

	"github.com/google/uuid"
)

// PasswordStatus is the lifecycle of one password version. Only one
// credential per user is active at a time; rotation deactivates the
// previous version instead of deleting it.
type PasswordStatus string

const (
	PasswordActive      PasswordStatus = "active"
	PasswordDeactivated PasswordStatus = "deactivated"
	PasswordCompromised PasswordStatus = "compromised"
	PasswordBlacklisted PasswordStatus = "blacklisted"
)

type Credential struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index"`
	Email     string         `json:"email" gorm:"not null"`
	Digest    string         `json:"-" gorm:"not null"`
	Status    PasswordStatus `json:"status" gorm:"not null;default:'active'"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
