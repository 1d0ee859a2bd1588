package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/opswatch/opswatch/internal/domain"
)

// Authenticator issues access tokens for authenticated users.
type Authenticator interface {
	GenerateToken(ctx context.Context, user *domain.User) (string, error)
}

// Service implements identity business logic.
type Service struct {
	repo Repository
	auth Authenticator
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator) *Service {
	return &Service{
		repo: repo,
		auth: auth,
	}
}

// RegisterInput contains the data for creating a new user account.
type RegisterInput struct {
	Email          string
	Name           string
	Password       string
	Role           domain.Role
	OrganizationID string
}

// Register creates a new user account with a hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := &domain.User{
		Email:          input.Email,
		Name:           input.Name,
		PasswordHash:   string(hash),
		Role:           role,
		OrganizationID: input.OrganizationID,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials and returns the user with a fresh
// access token. Unknown emails and wrong passwords are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.auth.GenerateToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// LookupEmail resolves a user identifier to an email address. The
// identifier may be a user id or an email; email-shaped input is looked
// up as an email directly.
func (s *Service) LookupEmail(ctx context.Context, identifier string) (string, error) {
	var user *domain.User
	var err error

	if strings.Contains(identifier, "@") {
		user, err = s.repo.GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.repo.GetUserByID(ctx, identifier)
	}
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
