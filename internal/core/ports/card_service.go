package ports

import (
	"context"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
)

// AddCardInput describes a new card. ImageFilename is the name of an image
// that has already been written to the image store; the service turns it into
// a public URL. Username is the owner's username, used for cache
// invalidation.
type AddCardInput struct {
	UserID        string
	Username      string
	Title         string
	Value         string
	FunFact       string
	ImageFilename string
}

// UpdateCardInput is a partial card update. Nil patch fields keep the stored
// value; NewImageFilename, when non-empty, replaces the card's image and the
// old file is deleted.
type UpdateCardInput struct {
	UserID           string
	Username         string
	CardID           string
	Patch            domain.CardPatch
	NewImageFilename string
}

// CardService implements add/update/delete on the embedded card sequence,
// including the image-file lifecycle tied to each mutation.
type CardService interface {
	AddCard(ctx context.Context, input AddCardInput) (*domain.Card, error)
	UpdateCard(ctx context.Context, input UpdateCardInput) error
	DeleteCard(ctx context.Context, userID, username, cardID string) error
	GetUserCards(ctx context.Context, userID string) ([]domain.Card, error)
}
