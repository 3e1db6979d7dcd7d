package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/app/repositories"
	"github.com/shashiranjanraj/commandes/pkg/metrics"
)

var ErrInvalidCredentials = errors.New("services: invalid credentials")

// UserFinder loads a user, hash included, by login name.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// PasswordChecker verifies a plain password against a stored hash.
type PasswordChecker interface {
	Compare(hash, plain string) bool
}

// TokenIssuer signs an access token for an identity.
type TokenIssuer interface {
	Issue(userID uint, username, userType string) (string, error)
}

// LoginResult is returned to the client on success. User never carries
// the password hash when serialised.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type AuthService struct {
	users     UserFinder
	passwords PasswordChecker
	tokens    TokenIssuer
}

func NewAuthService(users UserFinder, passwords PasswordChecker, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, passwords: passwords, tokens: tokens}
}

// Login checks the credentials and issues a token. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repositories.ErrUserNotFound) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("services: login: %w", err)
	}

	if !s.passwords.Compare(user.Password, password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username, user.Type)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("services: login: %w", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &LoginResult{Token: token, User: *user}, nil
}
