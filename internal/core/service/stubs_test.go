package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
	"github.com/cardfolio/cardfolio-api/internal/core/ports"
)

// stubUserRepo is an in-memory UserRepository with the same observable
// semantics as the Mongo implementation.
type stubUserRepo struct {
	users      map[string]*domain.User // keyed by id
	nextID     int
	appendErr  error
	removeErr  error
	findErr    error
	loginErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) addUser(u *domain.User) *domain.User {
	r.nextID++
	clone := *u
	if clone.ID == "" {
		clone.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	r.users[clone.ID] = &clone
	return &clone
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Cards = append([]domain.Card(nil), u.Cards...)
	return &clone
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == strings.ToLower(user.Username) {
			return nil, domain.ErrUsernameTaken
		}
		if u.Email == strings.ToLower(user.Email) {
			return nil, domain.ErrEmailTaken
		}
	}
	return cloneUser(r.addUser(user)), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == strings.ToLower(username) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByLogin(_ context.Context, usernameOrEmail string) (*domain.User, error) {
	if r.loginErr != nil {
		return nil, r.loginErr
	}
	login := strings.ToLower(usernameOrEmail)
	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == strings.ToLower(username) || u.Email == strings.ToLower(email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Cards(_ context.Context, userID string) ([]domain.Card, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return append([]domain.Card(nil), u.Cards...), nil
}

func (r *stubUserRepo) FindCard(_ context.Context, userID, cardID string) (*domain.Card, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for i := range u.Cards {
		if u.Cards[i].ID == cardID {
			card := u.Cards[i]
			return &card, nil
		}
	}
	return nil, domain.ErrCardNotFound
}

func (r *stubUserRepo) AppendCard(_ context.Context, userID string, card domain.Card) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Cards = append(u.Cards, card)
	return nil
}

func (r *stubUserRepo) UpdateCard(_ context.Context, userID, cardID string, patch domain.CardPatch, imageURL string) (bool, error) {
	u, ok := r.users[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	for i := range u.Cards {
		if u.Cards[i].ID != cardID {
			continue
		}
		if patch.Title != nil {
			u.Cards[i].Title = *patch.Title
		}
		if patch.Value != nil {
			u.Cards[i].Value = *patch.Value
		}
		if patch.FunFact != nil {
			u.Cards[i].FunFact = *patch.FunFact
		}
		if imageURL != "" {
			u.Cards[i].Image = imageURL
		}
		return true, nil
	}
	return false, nil
}

func (r *stubUserRepo) RemoveCard(_ context.Context, userID, cardID string) (bool, error) {
	if r.removeErr != nil {
		return false, r.removeErr
	}
	u, ok := r.users[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	for i := range u.Cards {
		if u.Cards[i].ID == cardID {
			u.Cards = append(u.Cards[:i], u.Cards[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// stubImageStore records writes and deletes without touching disk.
type stubImageStore struct {
	saved     map[string]bool
	deleted   []string
	deleteErr error
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{saved: make(map[string]bool)}
}

func (s *stubImageStore) Save(filename string, _ io.Reader, _ int64, _ string) error {
	s.saved[filename] = true
	return nil
}

func (s *stubImageStore) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.saved, filename)
	return nil
}

func (s *stubImageStore) GenerateFilename(userID, originalName string) string {
	return "card_" + userID + "_1" + path.Ext(originalName)
}

func (s *stubImageStore) PublicURL(filename string) string {
	return "/uploads/cards/" + filename
}

func (s *stubImageStore) FilenameFromURL(url string) string {
	return path.Base(url)
}

func (s *stubImageStore) deletedOnce(filename string) bool {
	for _, d := range s.deleted {
		if d == filename {
			return true
		}
	}
	return false
}

// stubProfileCache records cache traffic; entries can be preloaded.
type stubProfileCache struct {
	entries     map[string]*ports.PublicProfile
	invalidated []string
	getErr      error
}

func newStubProfileCache() *stubProfileCache {
	return &stubProfileCache{entries: make(map[string]*ports.PublicProfile)}
}

func (c *stubProfileCache) Get(_ context.Context, username string) (*ports.PublicProfile, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[username], nil
}

func (c *stubProfileCache) Set(_ context.Context, username string, profile *ports.PublicProfile) error {
	c.entries[username] = profile
	return nil
}

func (c *stubProfileCache) Invalidate(_ context.Context, username string) error {
	c.invalidated = append(c.invalidated, username)
	delete(c.entries, username)
	return nil
}

var errStubRepo = errors.New("stub repo failure")
