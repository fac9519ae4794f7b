package ports

import (
	"context"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
)

// RegisterInput carries everything needed to create an account. Username,
// Email and Password are required; the profile fields are optional.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	Name         string
	Location     string
	Bio          string
	ProfileImage string
}

// AuthService implements registration and login.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)

	// Login authenticates by username or email and returns a signed session
	// token alongside the user. Unknown user and wrong password yield the
	// same domain.ErrInvalidCredentials.
	Login(ctx context.Context, usernameOrEmail, password string) (string, *domain.User, error)
}
