package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
	"github.com/cardfolio/cardfolio-api/internal/core/ports"
)

// CardService implements card mutations on the embedded card sequence. Image
// files are written by the HTTP layer before AddCard/UpdateCard run, so the
// document is only ever updated to point at a file that already exists; a
// failed document write leaves at worst an orphaned file, never a dangling
// reference.
type CardService struct {
	repo   ports.UserRepository
	images ports.ImageStore
	cache  ports.ProfileCache
	logger zerolog.Logger
}

func NewCardService(repo ports.UserRepository, images ports.ImageStore, cache ports.ProfileCache, logger zerolog.Logger) *CardService {
	return &CardService{repo: repo, images: images, cache: cache, logger: logger}
}

// AddCard appends a new card to the user's collection. Title, value and an
// uploaded image are required.
func (s *CardService) AddCard(ctx context.Context, input ports.AddCardInput) (*domain.Card, error) {
	if input.ImageFilename == "" {
		return nil, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Value) == "" {
		return nil, fmt.Errorf("%w: title and value are required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	card := domain.Card{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Value:     input.Value,
		FunFact:   input.FunFact,
		Image:     s.images.PublicURL(input.ImageFilename),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.AppendCard(ctx, input.UserID, card); err != nil {
		// The file was written before this point; remove it so a failed
		// insert does not leak an orphan.
		if delErr := s.images.Delete(input.ImageFilename); delErr != nil {
			s.logger.Warn().Err(delErr).Str("filename", input.ImageFilename).Msg("orphaned image cleanup failed")
		}
		return nil, err
	}

	s.invalidateProfile(ctx, input.Username)
	s.logger.Info().Str("user_id", input.UserID).Str("card_id", card.ID).Msg("card added")
	return &card, nil
}

// UpdateCard applies a partial update to one card. Omitted fields keep their
// stored value; an explicit empty string overwrites. A new image replaces the
// old file, which is deleted from the store.
func (s *CardService) UpdateCard(ctx context.Context, input ports.UpdateCardInput) error {
	current, err := s.repo.FindCard(ctx, input.UserID, input.CardID)
	if err != nil {
		return err
	}

	imageURL := ""
	if input.NewImageFilename != "" {
		oldFilename := s.images.FilenameFromURL(current.Image)
		if delErr := s.images.Delete(oldFilename); delErr != nil {
			s.logger.Warn().Err(delErr).Str("filename", oldFilename).Msg("failed to delete replaced image")
		}
		imageURL = s.images.PublicURL(input.NewImageFilename)
	}

	matched, err := s.repo.UpdateCard(ctx, input.UserID, input.CardID, input.Patch, imageURL)
	if err != nil {
		return err
	}
	if !matched {
		return domain.ErrCardNotFound
	}

	s.invalidateProfile(ctx, input.Username)
	s.logger.Info().Str("user_id", input.UserID).Str("card_id", input.CardID).Msg("card updated")
	return nil
}

// DeleteCard removes a card and its image file. The database removal is the
// operation of record: an image deletion failure is logged and swallowed so a
// missing file can never block removing the card.
func (s *CardService) DeleteCard(ctx context.Context, userID, username, cardID string) error {
	card, err := s.repo.FindCard(ctx, userID, cardID)
	if err != nil {
		return err
	}

	filename := s.images.FilenameFromURL(card.Image)
	if delErr := s.images.Delete(filename); delErr != nil {
		s.logger.Warn().Err(delErr).Str("filename", filename).Msg("failed to delete card image")
	}

	removed, err := s.repo.RemoveCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrCardNotFound
	}

	s.invalidateProfile(ctx, username)
	s.logger.Info().Str("user_id", userID).Str("card_id", cardID).Msg("card deleted")
	return nil
}

// GetUserCards returns the full card sequence, empty when the user has none.
func (s *CardService) GetUserCards(ctx context.Context, userID string) ([]domain.Card, error) {
	cards, err := s.repo.Cards(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	return cards, nil
}

func (s *CardService) invalidateProfile(ctx context.Context, username string) {
	if s.cache == nil || username == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, username); err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("profile cache invalidation failed")
	}
}
