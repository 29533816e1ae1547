package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"math/big"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	repos *repository.Repositories
	txm   repository.TxManager
}

func NewUserService(repos *repository.Repositories, txm repository.TxManager) *UserService {
	return &UserService{repos: repos, txm: txm}
}

func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error) {
	return s.repos.User.List(ctx, filter)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ResourceNotFound("user")
		}
		return nil, err
	}
	return user, nil
}

// UpdateStatus activates or deactivates an account.
func (s *UserService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ItemStatus) (*domain.User, error) {
	if status != domain.StatusActive && status != domain.StatusDeactivated {
		return nil, domain.BadRequest("'status' must be " + string(domain.StatusActive) + " or " + string(domain.StatusDeactivated))
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Status = status
	if err := s.repos.User.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureSuperAdmin bootstraps the first super-admin when no active
// grant for the role exists anywhere. The user, their credential and
// the grant commit as one unit; the generated password is printed
// once so the operator can log in and rotate it.
func (s *UserService) EnsureSuperAdmin(ctx context.Context) error {
	existing, err := s.repos.Privilege.List(ctx, repository.PrivilegeFilter{
		Role:   domain.RoleSuperAdmin,
		Status: domain.StatusActive,
		Limit:  1,
	})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	password := generateCode(8)
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:        uuid.New(),
		FirstName: "John",
		LastName:  "Doe",
		Email:     "johndoe@gmail.com",
		Phone:     "070435343453",
		Gender:    domain.GenderMale,
		Status:    domain.StatusActive,
	}

	err = s.txm.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		if err := repos.User.Create(ctx, user); err != nil {
			return err
		}
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
		privilege := &domain.Privilege{
			ID:         uuid.New(),
			UserID:     user.ID,
			Role:       domain.RoleSuperAdmin,
			AssignedBy: user.ID,
			Status:     domain.StatusActive,
		}
		return repos.Privilege.Create(ctx, privilege)
	})
	if err != nil {
		return err
	}

	log.Printf("super admin created - name: %s email: %s password: %s", user.FullName(), user.Email, password)
	return nil
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}
