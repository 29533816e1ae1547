package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"gorm.io/gorm"
)

// ConnectionService is the registry mapping a user to the transport
// endpoints currently reachable for push delivery. A user may hold
// several endpoints at once (one per device/tab).
type ConnectionService struct {
	connections repository.ConnectionRepository
	auth        *AuthService
}

func NewConnectionService(connections repository.ConnectionRepository, auth *AuthService) *ConnectionService {
	return &ConnectionService{connections: connections, auth: auth}
}

// Connect authenticates the handshake token and registers the
// endpoint under the session's user. Reconnecting an endpoint id that
// is already registered is a no-op. Returns the user the endpoint now
// belongs to.
func (s *ConnectionService) Connect(ctx context.Context, token, endpointID string) (uuid.UUID, error) {
	session, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}

	record, err := s.connections.GetActiveByUserID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, err
		}
		sessionID := session.ID
		ids, _ := json.Marshal([]string{endpointID})
		record = &domain.ConnectionRecord{
			ID:             uuid.New(),
			LoginSessionID: &sessionID,
			UserID:         session.UserID,
			EndpointIDs:    ids,
			Status:         domain.StatusActive,
		}
		createErr := s.connections.Create(ctx, record)
		if createErr == nil {
			return session.UserID, nil
		}

		// A concurrent connect for the same user can win the race to
		// create the record; the one-active-per-user index rejects this
		// insert. Fall back to the surviving record.
		record, err = s.connections.GetActiveByUserID(ctx, session.UserID)
		if err != nil {
			return uuid.Nil, createErr
		}
	}

	if err := s.connections.AddEndpoint(ctx, record.ID, endpointID); err != nil {
		return uuid.Nil, err
	}
	return session.UserID, nil
}

// Disconnect drops the endpoint from whichever record holds it. An
// endpoint nobody tracks is logged and ignored; closing a connection
// is never an error anyone can act on.
func (s *ConnectionService) Disconnect(ctx context.Context, endpointID string) {
	record, err := s.connections.GetActiveByEndpointID(ctx, endpointID)
	if err != nil {
		log.Printf("connection registry: disconnect %s: %v", endpointID, err)
		return
	}

	if err := s.connections.RemoveEndpoint(ctx, record.ID, endpointID); err != nil {
		log.Printf("connection registry: remove endpoint %s: %v", endpointID, err)
	}
}

// Resolve returns the user's current endpoint set, empty when the
// user has no active record.
func (s *ConnectionService) Resolve(ctx context.Context, userID uuid.UUID) ([]string, error) {
	record, err := s.connections.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.Endpoints(), nil
}
