package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConnectionRecord maps a user to the set of live transport endpoints
// currently reachable for push delivery. One active record per user;
// the record itself is never deleted, endpoint ids come and go as
// individual connections open and close.
type ConnectionRecord struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LoginSessionID *uuid.UUID     `json:"loginSessionId" gorm:"type:uuid"`
	UserID         uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index"`
	EndpointIDs    datatypes.JSON `json:"endpointIds" gorm:"type:jsonb;not null;default:'[]'"`
	Status         ItemStatus     `json:"status" gorm:"not null;default:'active'"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Endpoints decodes the stored endpoint-id set. A malformed column
// yields an empty set rather than an error; the registry treats the
// record as having no reachable endpoints.
func (c *ConnectionRecord) Endpoints() []string {
	var ids []string
	if err := json.Unmarshal(c.EndpointIDs, &ids); err != nil {
		return nil
	}
	return ids
}
