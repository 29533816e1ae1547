package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/config"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordService coordinates credential rotation. The whole
// sequence — insert the new credential, deactivate the old one,
// close the current session, open the replacement — runs inside one
// transaction so no partial credential or session state is ever
// observable.
type PasswordService struct {
	repos *repository.Repositories
	txm   repository.TxManager
	auth  *AuthService
	cfg   *config.Config
}

func NewPasswordService(repos *repository.Repositories, txm repository.TxManager, auth *AuthService, cfg *config.Config) *PasswordService {
	return &PasswordService{repos: repos, txm: txm, auth: auth, cfg: cfg}
}

// RotatePassword verifies the current password, then atomically
// replaces the credential and reissues the session. The returned
// token belongs to the fresh session; the previous token is dead the
// moment this commits.
func (s *PasswordService) RotatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) (string, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ResourceNotFound("user")
		}
		return "", err
	}

	current, err := s.repos.Credential.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ResourceNotFound("password")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(current.Digest), []byte(currentPassword)); err != nil {
		return "", domain.ErrPasswordMismatch
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	var token string
	err = s.txm.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		credential := &domain.Credential{
			ID:     uuid.New(),
			UserID: user.ID,
			Email:  user.Email,
			Digest: string(digest),
			Status: domain.PasswordActive,
		}
		if err := repos.Credential.Create(ctx, credential); err != nil {
			return err
		}

		if err := repos.Credential.UpdateStatus(ctx, current.ID, domain.PasswordDeactivated); err != nil {
			return err
		}

		if _, err := closeSession(ctx, repos.Session, user.ID); err != nil {
			return err
		}

		session, err := openSession(ctx, repos.Session, user.ID, s.cfg.SessionValidity)
		if err != nil {
			return err
		}

		token, err = s.auth.TokenFor(user.ID, session.ID, session.ValidityEnd)
		return err
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
