package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cardfolio/cardfolio-api/internal/core/domain"
)

const usersCollection = "users"

// UserRepository persists users and their embedded card collections.
//
// Each document carries the cards array plus a card_index map (card id →
// array position). Every card mutation writes both in the same
// single-document update, so the index never drifts from the sequence. Card
// updates are expressed as read-position-then-write: the write's filter
// re-checks that the index still maps the id to the same position, which
// keeps the update atomic per document while accepting the documented
// last-writer-wins window between the read and the write.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type cardDoc struct {
	ID        string    `bson:"id"`
	Title     string    `bson:"title"`
	Value     string    `bson:"value"`
	FunFact   string    `bson:"fun_fact"`
	Image     string    `bson:"image"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password"`
	Name         string             `bson:"name"`
	Location     string             `bson:"location"`
	Bio          string             `bson:"bio"`
	ProfileImage string             `bson:"profile_image"`
	Cards        []cardDoc          `bson:"cards"`
	CardIndex    map[string]int     `bson:"card_index"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		Username:     strings.ToLower(user.Username),
		Email:        strings.ToLower(user.Email),
		Password:     user.PasswordHash,
		Name:         user.Name,
		Location:     user.Location,
		Bio:          user.Bio,
		ProfileImage: user.ProfileImage,
		Cards:        []cardDoc{},
		CardIndex:    map[string]int{},
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The service probes before inserting and reports which field
			// collided; the unique index is the backstop for the race.
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	created.Username = doc.Username
	created.Email = doc.Email
	return &created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": strings.ToLower(username)})
}

func (r *UserRepository) FindByLogin(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	login := strings.ToLower(usernameOrEmail)
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": login},
	}})
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": strings.ToLower(username)},
		bson.M{"email": strings.ToLower(email)},
	}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return docToUser(&doc), nil
}

func (r *UserRepository) Cards(ctx context.Context, userID string) ([]domain.Card, error) {
	doc, err := r.findCardsDoc(ctx, userID)
	if err != nil {
		return nil, err
	}

	cards := make([]domain.Card, 0, len(doc.Cards))
	for _, c := range doc.Cards {
		cards = append(cards, docToCard(c))
	}
	return cards, nil
}

func (r *UserRepository) FindCard(ctx context.Context, userID, cardID string) (*domain.Card, error) {
	doc, err := r.findCardsDoc(ctx, userID)
	if err != nil {
		return nil, err
	}

	pos, ok := doc.CardIndex[cardID]
	if !ok || pos < 0 || pos >= len(doc.Cards) || doc.Cards[pos].ID != cardID {
		return nil, domain.ErrCardNotFound
	}

	card := docToCard(doc.Cards[pos])
	return &card, nil
}

// appendRetries bounds how often AppendCard re-reads after losing the tail
// position to a concurrent append.
const appendRetries = 3

// appendCardFilter matches the user only while the cards array still has the
// size observed by the preceding read. Two concurrent appends both read the
// same tail position; the guard lets only one of their writes land, so two
// index entries can never point at the same position.
func appendCardFilter(oid primitive.ObjectID, pos int) bson.M {
	return bson.M{"_id": oid, "cards": bson.M{"$size": pos}}
}

func appendCardUpdate(card domain.Card, pos int, now time.Time) bson.M {
	return bson.M{
		"$push": bson.M{"cards": cardToDoc(card)},
		"$set": bson.M{
			"card_index." + card.ID: pos,
			"updated_at":            now,
		},
	}
}

func (r *UserRepository) AppendCard(ctx context.Context, userID string, card domain.Card) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	// The new card's position is the current size of the index arena. A
	// no-match means a concurrent append moved the tail between the read and
	// the write; re-read the new position and try again.
	for attempt := 0; attempt < appendRetries; attempt++ {
		doc, err := r.findCardsDoc(ctx, userID)
		if err != nil {
			return err
		}
		pos := len(doc.Cards)

		writeCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		res, err := r.coll.UpdateOne(writeCtx,
			appendCardFilter(oid, pos),
			appendCardUpdate(card, pos, time.Now().UTC()),
		)
		cancel()
		if err != nil {
			return fmt.Errorf("append card: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}
	}
	return fmt.Errorf("append card: position contention for user %s", userID)
}

func (r *UserRepository) UpdateCard(ctx context.Context, userID, cardID string, patch domain.CardPatch, imageURL string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, domain.ErrUserNotFound
	}

	doc, err := r.findCardsDoc(ctx, userID)
	if err != nil {
		return false, err
	}
	pos, ok := doc.CardIndex[cardID]
	if !ok || pos < 0 || pos >= len(doc.Cards) || doc.Cards[pos].ID != cardID {
		return false, domain.ErrCardNotFound
	}

	now := time.Now().UTC()
	set := bson.M{
		fmt.Sprintf("cards.%d.updated_at", pos): now,
		"updated_at":                            now,
	}
	if patch.Title != nil {
		set[fmt.Sprintf("cards.%d.title", pos)] = *patch.Title
	}
	if patch.Value != nil {
		set[fmt.Sprintf("cards.%d.value", pos)] = *patch.Value
	}
	if patch.FunFact != nil {
		set[fmt.Sprintf("cards.%d.fun_fact", pos)] = *patch.FunFact
	}
	if imageURL != "" {
		set[fmt.Sprintf("cards.%d.image", pos)] = imageURL
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// The filter re-checks the arena mapping so the write only lands if the
	// card still sits at the position we read.
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "card_index." + cardID: pos},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("update card: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *UserRepository) RemoveCard(ctx context.Context, userID, cardID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, domain.ErrUserNotFound
	}

	doc, err := r.findCardsDoc(ctx, userID)
	if err != nil {
		return false, err
	}
	pos, ok := doc.CardIndex[cardID]
	if !ok || pos < 0 || pos >= len(doc.Cards) || doc.Cards[pos].ID != cardID {
		return false, domain.ErrCardNotFound
	}

	// Removing a card shifts every later position, so the sequence and the
	// index are rebuilt together and written in a single update.
	newCards := make([]cardDoc, 0, len(doc.Cards)-1)
	newCards = append(newCards, doc.Cards[:pos]...)
	newCards = append(newCards, doc.Cards[pos+1:]...)

	newIndex := make(map[string]int, len(newCards))
	for i, c := range newCards {
		newIndex[c.ID] = i
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "card_index." + cardID: pos},
		bson.M{"$set": bson.M{
			"cards":      newCards,
			"card_index": newIndex,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("remove card: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// EnsureIndexes creates the unique indexes backing the case-insensitive
// username/email invariant. Values are stored lowercase, so plain unique
// indexes suffice.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findCardsDoc(ctx context.Context, userID string) (*userDoc, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	err = r.coll.FindOne(ctx,
		bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"cards": 1, "card_index": 1}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user cards: %w", err)
	}
	return &doc, nil
}

func cardToDoc(c domain.Card) cardDoc {
	return cardDoc{
		ID:        c.ID,
		Title:     c.Title,
		Value:     c.Value,
		FunFact:   c.FunFact,
		Image:     c.Image,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func docToCard(c cardDoc) domain.Card {
	return domain.Card{
		ID:        c.ID,
		Title:     c.Title,
		Value:     c.Value,
		FunFact:   c.FunFact,
		Image:     c.Image,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func docToUser(doc *userDoc) *domain.User {
	cards := make([]domain.Card, 0, len(doc.Cards))
	for _, c := range doc.Cards {
		cards = append(cards, docToCard(c))
	}

	return &domain.User{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: doc.Password,
		Name:         doc.Name,
		Location:     doc.Location,
		Bio:          doc.Bio,
		ProfileImage: doc.ProfileImage,
		Cards:        cards,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
