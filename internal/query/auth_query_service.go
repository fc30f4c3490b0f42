package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/eaglebank/auth-api/internal/repository"
	"github.com/eaglebank/auth-api/shared/cqrs"
	"github.com/eaglebank/auth-api/shared/models"
	"github.com/eaglebank/auth-api/shared/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// UserFinder is the part of the store login and refresh need.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthQueryService handles login and token refresh. Neither mutates state,
// so there is no command counterpart.
type AuthQueryService struct {
	users  UserFinder
	tokens TokenIssuer
}

func NewAuthQueryService(users UserFinder, tokens TokenIssuer) *AuthQueryService {
	return &AuthQueryService{users: users, tokens: tokens}
}

// Login returns repository.ErrUserNotFound for an unknown email and
// ErrInvalidCredentials for a wrong password.
func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (string, error) {
	user, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.ID, user.Email)
}

// RefreshToken re-issues a token for an identity whose token has already
// been verified. The account must still exist, and the new token carries the
// currently stored email.
func (s *AuthQueryService) RefreshToken(ctx context.Context, cmd cqrs.RefreshTokenCommand) (string, error) {
	user, err := s.users.FindByID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	return s.tokens.Issue(user.ID, user.Email)
}
