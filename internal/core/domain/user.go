package domain

import "time"

// DefaultProfileImage is assigned at registration when the user did not
// provide a profile image of their own.
const DefaultProfileImage = "https://randomuser.me/api/portraits/lego/1.jpg"

// User models an account and its embedded card collection. Cards live inline
// in the user document; insertion order is display order.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Bio          string    `json:"bio"`
	ProfileImage string    `json:"profileImage"`
	Cards        []Card    `json:"cards"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Card is a single collectible owned by exactly one user. The ID is unique
// within the owning user's collection. Value is the display string entered by
// the user (e.g. "$1,200"); parsing it is the stats service's concern.
type Card struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Value     string    `json:"value"`
	FunFact   string    `json:"funFact"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CardPatch carries a partial card update. Nil fields keep their previous
// value; a pointer to an empty string overwrites with the empty string.
type CardPatch struct {
	Title   *string
	Value   *string
	FunFact *string
}
