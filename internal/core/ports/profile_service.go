package ports

import (
	"context"
	"time"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
)

// CollectionStats aggregates a card sequence. TotalValue is the formatted
// display string ("$1.2k"), RawTotalValue the unformatted sum.
type CollectionStats struct {
	CardCount     int     `json:"cardCount"`
	TotalValue    string  `json:"totalValue"`
	RawTotalValue float64 `json:"rawTotalValue"`
}

// PublicProfile is a user as seen by anyone. It structurally omits the
// password hash and email so a projection bug cannot leak them.
type PublicProfile struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	Name         string          `json:"name"`
	Location     string          `json:"location"`
	Bio          string          `json:"bio"`
	ProfileImage string          `json:"profileImage"`
	Cards        []domain.Card   `json:"cards"`
	Stats        CollectionStats `json:"stats"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ProfileService computes public profile projections and collection stats.
type ProfileService interface {
	GetPublicProfile(ctx context.Context, username string) (*PublicProfile, error)
}

// ProfileCache is a best-effort response cache for public profiles, keyed by
// lowercase username. A miss returns (nil, nil).
type ProfileCache interface {
	Get(ctx context.Context, username string) (*PublicProfile, error)
	Set(ctx context.Context, username string, profile *PublicProfile) error
	Invalidate(ctx context.Context, username string) error
}
