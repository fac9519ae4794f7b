package ports

import (
	"context"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
)

// UserRepository is the persistence boundary over the users collection.
// Implementations must guarantee single-document atomicity for every card
// mutation; they maintain a card-id→position index alongside the embedded
// card array and update both in the same write.
type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)

	// FindByUsername looks up by lowercase username.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByLogin matches the identifier against lowercase username OR email.
	FindByLogin(ctx context.Context, usernameOrEmail string) (*domain.User, error)

	// FindByUsernameOrEmail probes for a registration conflict and returns
	// the first colliding user, or domain.ErrUserNotFound when free.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)

	// Cards returns the user's card sequence in display order. A user with
	// no cards yields an empty slice, not an error.
	Cards(ctx context.Context, userID string) ([]domain.Card, error)

	// FindCard locates one card by id within the user's sequence.
	FindCard(ctx context.Context, userID, cardID string) (*domain.Card, error)

	// AppendCard appends the card and its index entry, refreshing updatedAt.
	AppendCard(ctx context.Context, userID string, card domain.Card) error

	// UpdateCard applies a partial update to the card located through the
	// index. imageURL, when non-empty, replaces the stored image reference.
	// Returns false when no document matched.
	UpdateCard(ctx context.Context, userID, cardID string, patch domain.CardPatch, imageURL string) (bool, error)

	// RemoveCard deletes the card and rebuilds the index in one write.
	RemoveCard(ctx context.Context, userID, cardID string) (bool, error)
}
