package domain

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "others"
)

// IsValid checks if a gender value is one of the accepted options
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ItemStatus is the lifecycle status shared by soft-deleted entities.
// Rows are never hard-deleted; reads that want live rows must filter
// on StatusActive explicitly.
type ItemStatus string

const (
	StatusActive      ItemStatus = "active"
	StatusDeactivated ItemStatus = "deactivated"
)

type User struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FirstName  string     `json:"firstName" gorm:"not null"`
	MiddleName string     `json:"middleName"`
	LastName   string     `json:"lastName" gorm:"not null"`
	Email      string     `json:"email" gorm:"uniqueIndex;not null"`
	Phone      string     `json:"phone" gorm:"uniqueIndex;not null"`
	Gender     Gender     `json:"gender" gorm:"not null"`
	Status     ItemStatus `json:"status" gorm:"not null;default:'active'"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// FullName joins the user's names, skipping an empty middle name.
func (u *User) FullName() string {
	if u.MiddleName == "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName + " " + u.MiddleName + " " + u.LastName
}
