package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
	"github.com/cardfolio/cardfolio-api/internal/core/ports"
)

// bcryptCost matches the cost factor used since the first deployment;
// changing it would only affect newly hashed passwords.
const bcryptCost = 10

const defaultTokenTTL = 7 * 24 * time.Hour

// AuthService implements registration and login against the user repository.
type AuthService struct {
	repo      ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

// Register creates a new account with an empty card collection. Username and
// email are stored lowercase and must be unique case-insensitively.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" || input.Password == "" {
		return nil, domain.ErrValidation
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil && existing != nil {
		if existing.Username == username {
			return nil, domain.ErrUsernameTaken
		}
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	profileImage := input.ProfileImage
	if profileImage == "" {
		profileImage = domain.DefaultProfileImage
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Name:         input.Name,
		Location:     input.Location,
		Bio:          input.Bio,
		ProfileImage: profileImage,
		Cards:        []domain.Card{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Insert(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", username).Msg("user registered")
	return created, nil
}

// Login authenticates by username or email. Unknown user and wrong password
// both report ErrInvalidCredentials so the response never reveals whether an
// account exists.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (string, *domain.User, error) {
	login := strings.ToLower(strings.TrimSpace(usernameOrEmail))
	if login == "" || password == "" {
		return "", nil, domain.ErrValidation
	}

	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		// Only a missing account counts as bad credentials; a repository
		// failure is not the caller's fault and must surface as such.
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("username", user.Username).Msg("user logged in")
	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
