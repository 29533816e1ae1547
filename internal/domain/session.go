package domain

import (
	"time"

	"github.com/google/uuid"
)

type LoginSession struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Active        bool      `json:"active" gorm:"not null;default:true"`
	ValidityStart time.Time `json:"validityStart" gorm:"not null"`
	ValidityEnd   time.Time `json:"validityEnd" gorm:"not null"`
	LoggedOut     bool      `json:"loggedOut" gorm:"not null;default:false"`
	Expired       bool      `json:"expired" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Usable reports whether the session still authorizes requests:
// it must be switched on and inside its validity window.
func (s *LoginSession) Usable(now time.Time) bool {
	return s.Active && !now.After(s.ValidityEnd)
}
