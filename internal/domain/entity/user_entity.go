package entity

import (
	"slices"
	"time"
)

// User is the aggregate root for identity.
// Password always holds a bcrypt hash, never the plaintext.
type User struct {
	ID            string
	Username      string
	Email         string
	Password      string
	Fullname      string
	About         string
	ProfileURL    string
	EmailVerified bool
	Role          Role
	Favorites     []string // idea ids
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasFavorite reports whether ideaID is already in the favorite set.
func (u *User) HasFavorite(ideaID string) bool {
	return slices.Contains(u.Favorites, ideaID)
}

// PublicUser is the redacted view of a user that may be embedded in other
// resources: no email, credential or favorites.
type PublicUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Fullname   string `json:"fullname,omitempty"`
	ProfileURL string `json:"profile_url"`
	Role       Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Fullname:   u.Fullname,
		ProfileURL: u.ProfileURL,
		Role:       u.Role,
	}
}

// Identity is what an authenticated request resolves to.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
