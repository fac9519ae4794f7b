package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
	"github.com/cardfolio/cardfolio-api/internal/core/ports"
)

// ProfileService serves public profile projections with collection stats.
// Results are cached best-effort; cache failures are logged and swallowed so
// the repository remains the source of truth.
type ProfileService struct {
	repo   ports.UserRepository
	cache  ports.ProfileCache
	logger zerolog.Logger
}

func NewProfileService(repo ports.UserRepository, cache ports.ProfileCache, logger zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, cache: cache, logger: logger}
}

// GetPublicProfile returns the profile anyone may see: everything except the
// password hash and email, plus aggregate stats over the card sequence.
func (s *ProfileService) GetPublicProfile(ctx context.Context, username string) (*ports.PublicProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, domain.ErrValidation
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, username)
		if err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("profile cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	cards := user.Cards
	if cards == nil {
		cards = []domain.Card{}
	}

	profile := &ports.PublicProfile{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Location:     user.Location,
		Bio:          user.Bio,
		ProfileImage: user.ProfileImage,
		Cards:        cards,
		Stats:        ComputeStats(cards),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, username, profile); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("profile cache write failed")
		}
	}

	return profile, nil
}

// ComputeStats sums the parsed value of every card. Unparsable values count
// as zero (see ParseCardValue).
func ComputeStats(cards []domain.Card) ports.CollectionStats {
	var total float64
	for _, card := range cards {
		total += ParseCardValue(card.Value)
	}

	return ports.CollectionStats{
		CardCount:     len(cards),
		TotalValue:    FormatTotalValue(total),
		RawTotalValue: total,
	}
}
