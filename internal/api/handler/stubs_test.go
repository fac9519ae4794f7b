package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
	"github.com/cardfolio/cardfolio-api/internal/core/ports"
)

// newContext builds an echo context with the request validator installed and,
// unless userID is empty, the identity the auth middleware would inject.
func newContext(req *http.Request, userID, username string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
		c.Set("username", username)
	}
	return c, rec
}

func jsonRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

type stubAuthService struct {
	registerErr error
	loginErr    error

	lastRegister ports.RegisterInput
	lastLoginID  string
	lastLoginPwd string
}

func (s *stubAuthService) Register(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
	s.lastRegister = input
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &domain.User{ID: "u1", Username: strings.ToLower(input.Username), Cards: []domain.Card{}}, nil
}

func (s *stubAuthService) Login(_ context.Context, usernameOrEmail, password string) (string, *domain.User, error) {
	s.lastLoginID = usernameOrEmail
	s.lastLoginPwd = password
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return "signed.token", &domain.User{ID: "u1", Username: strings.ToLower(usernameOrEmail)}, nil
}

type stubCardService struct {
	cards     []domain.Card
	addErr    error
	updateErr error
	deleteErr error
	listErr   error

	lastAdd    ports.AddCardInput
	lastUpdate ports.UpdateCardInput
	deletedID  string
}

func (s *stubCardService) AddCard(_ context.Context, input ports.AddCardInput) (*domain.Card, error) {
	s.lastAdd = input
	if s.addErr != nil {
		return nil, s.addErr
	}
	return &domain.Card{ID: "c1", Title: input.Title, Value: input.Value}, nil
}

func (s *stubCardService) UpdateCard(_ context.Context, input ports.UpdateCardInput) error {
	s.lastUpdate = input
	return s.updateErr
}

func (s *stubCardService) DeleteCard(_ context.Context, _, _, cardID string) error {
	s.deletedID = cardID
	return s.deleteErr
}

func (s *stubCardService) GetUserCards(_ context.Context, _ string) ([]domain.Card, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.cards, nil
}

// stubImages records saves and deletes so tests can assert the upload
// lifecycle without touching the filesystem.
type stubImages struct {
	saveErr error

	saved   []string
	deleted []string
}

func (s *stubImages) Save(filename string, r io.Reader, _ int64, _ string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	_, _ = io.Copy(io.Discard, r)
	s.saved = append(s.saved, filename)
	return nil
}

func (s *stubImages) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

func (s *stubImages) GenerateFilename(userID, originalName string) string {
	return fmt.Sprintf("card_%s_1%s", userID, filepath.Ext(originalName))
}

func (s *stubImages) PublicURL(filename string) string {
	return "/uploads/cards/" + filename
}

func (s *stubImages) FilenameFromURL(url string) string {
	return filepath.Base(url)
}

type stubProfileService struct {
	profile *ports.PublicProfile
	err     error
}

func (s *stubProfileService) GetPublicProfile(_ context.Context, _ string) (*ports.PublicProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}
