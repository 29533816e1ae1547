package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/config"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService owns login sessions and token issuance. Tokens are
// signed JWTs embedding the user id and the session id; a token is
// only as alive as the session row it points at.
type AuthService struct {
	repos *repository.Repositories
	txm   repository.TxManager
	cfg   *config.Config
}

func NewAuthService(repos *repository.Repositories, txm repository.TxManager, cfg *config.Config) *AuthService {
	return &AuthService{repos: repos, txm: txm, cfg: cfg}
}

type SignupInput struct {
	FirstName  string
	MiddleName string
	LastName   string
	Email      string
	Phone      string
	Gender     domain.Gender
	Password   string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

// Signup creates the user and their first credential in one
// transaction, then opens a session for them.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	existing, err := s.repos.User.GetByEmailOrPhone(ctx, input.Email, input.Phone)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Email == input.Email {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, domain.ErrDuplicatePhone
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:         uuid.New(),
		FirstName:  input.FirstName,
		MiddleName: input.MiddleName,
		LastName:   input.LastName,
		Email:      input.Email,
		Phone:      input.Phone,
		Gender:     input.Gender,
		Status:     domain.StatusActive,
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
		return repos.Credential.Create(ctx, credential)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.Login(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// LoginWithPassword resolves the email to a user, verifies the
// supplied password against the active credential digest and opens a
// new session.
func (s *AuthService) LoginWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repos.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidLogin
		}
		return nil, err
	}

	credential, err := s.repos.Credential.GetActiveByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidLogin
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(credential.Digest), []byte(password)); err != nil {
		return nil, domain.ErrInvalidLogin
	}

	token, err := s.Login(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login opens a fresh session and mints its token. Pre-existing
// sessions are left alone: a user may hold several live sessions at
// once.
func (s *AuthService) Login(ctx context.Context, userID uuid.UUID) (string, error) {
	session, err := openSession(ctx, s.repos.Session, userID, s.cfg.SessionValidity)
	if err != nil {
		return "", err
	}
	return s.TokenFor(userID, session.ID, session.ValidityEnd)
}

// Logout switches off the user's active session. A session past its
// validity window is marked expired instead of logged out. Returns
// nil without error when there is no active session.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) (*domain.LoginSession, error) {
	return closeSession(ctx, s.repos.Session, userID)
}

// Authenticate verifies a bearer token and resolves it to a usable
// session. Missing and switched-off sessions surface as an invalid
// token; a session past its validity window as session-expired.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.LoginSession, error) {
	userID, sessionID, err := s.parseToken(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	session, err := s.repos.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	if session.UserID != userID || !session.Active {
		return nil, domain.ErrInvalidToken
	}
	if !session.Usable(time.Now()) {
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ResourceNotFound("user")
		}
		return nil, err
	}
	return user, nil
}

// TokenFor mints the signed token for an open session. The token
// expires with the session's validity window.
func (s *AuthService) TokenFor(userID, sessionID uuid.UUID, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"sid": sessionID.String(),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) parseToken(tokenString string) (userID, sessionID uuid.UUID, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, uuid.Nil, errors.New("invalid token")
	}

	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)
	if userID, err = uuid.Parse(sub); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if sessionID, err = uuid.Parse(sid); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, sessionID, nil
}

// openSession inserts a new switched-on session with the given
// validity window. Shared with the credential rotation path, which
// runs it against transaction-scoped repositories.
func openSession(ctx context.Context, sessions repository.SessionRepository, userID uuid.UUID, validity time.Duration) (*domain.LoginSession, error) {
	now := time.Now()
	session := &domain.LoginSession{
		ID:            uuid.New(),
		UserID:        userID,
		Active:        true,
		ValidityStart: now,
		ValidityEnd:   now.Add(validity),
	}
	if err := sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// closeSession switches off the user's active session, recording
// whether it was logged out or found already expired.
func closeSession(ctx context.Context, sessions repository.SessionRepository, userID uuid.UUID) (*domain.LoginSession, error) {
	session, err := sessions.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if session.ValidityEnd.After(time.Now()) {
		session.LoggedOut = true
		session.ValidityEnd = time.Now()
	} else {
		session.Expired = true
	}
	session.Active = false

	if err := sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
