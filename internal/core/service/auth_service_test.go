package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
	"github.com/cardfolio/cardfolio-api/internal/core/ports"
)

func newAuthService(repo *stubUserRepo) *AuthService {
	return NewAuthService(repo, "secret", time.Hour, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "Alice",
		Email:    "Alice@Example.com",
		Password: "pass123",
		Location: "Melbourne",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased identity, got %q / %q", user.Username, user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Cards == nil || len(user.Cards) != 0 {
		t.Fatalf("expected empty card collection, got %v", user.Cards)
	}
	if user.ProfileImage != domain.DefaultProfileImage {
		t.Fatalf("expected default profile image, got %q", user.ProfileImage)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthService(newStubUserRepo())

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Email: "", Password: "pass"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pass123"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	// Same username in a different case, with a different email, must still collide.
	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "BOB", Email: "other@example.com", Password: "pass456"})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pass123"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol", Email: "Bob@Example.com", Password: "pass456"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "carol", Email: "carol@example.com", Password: "s3cret1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Login works by username and by email, case-insensitively.
	for _, login := range []string{"carol", "CAROL", "Carol@Example.com"} {
		token, user, err := svc.Login(context.Background(), login, "s3cret1")
		if err != nil {
			t.Fatalf("login %q failed: %v", login, err)
		}
		if token == "" {
			t.Fatalf("expected token, got empty")
		}
		if user.Username != "carol" {
			t.Fatalf("unexpected user: %+v", user)
		}
	}
}

func TestAuthService_Login_TokenClaims(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	created, err := svc.Register(context.Background(), ports.RegisterInput{Username: "dave", Email: "dave@example.com", Password: "goodpass"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, _, err := svc.Login(context.Background(), "dave", "goodpass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["user_id"] != created.ID {
		t.Fatalf("expected user_id %q, got %v", created.ID, claims["user_id"])
	}
	if claims["username"] != "dave" {
		t.Fatalf("expected username dave, got %v", claims["username"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatalf("expected exp claim")
	}
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "erin", Email: "erin@example.com", Password: "goodpass"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Wrong password and unknown user must yield the same error so a caller
	// cannot enumerate accounts.
	_, _, wrongPass := svc.Login(context.Background(), "erin", "badpass")
	_, _, noUser := svc.Login(context.Background(), "ghost", "badpass")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(noUser, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", noUser)
	}
}

func TestAuthService_Login_RepositoryFailureIsNotBadCredentials(t *testing.T) {
	repo := newStubUserRepo()
	repo.loginErr = errStubRepo
	svc := newAuthService(repo)

	// A lookup that fails for infrastructure reasons must surface as the
	// failure it is, not masquerade as a credentials problem.
	_, _, err := svc.Login(context.Background(), "erin", "goodpass")
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("repository failure reported as bad credentials: %v", err)
	}
	if !errors.Is(err, errStubRepo) {
		t.Fatalf("expected the repository error to propagate, got %v", err)
	}
}
