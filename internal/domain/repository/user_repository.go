package repository

import (
	"context"
	"time"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups of missing users return errs.ErrNotFound; Create returns an
// errs.KindConflict error when the email is already taken.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// Writes touch only the fields they name.

	// UpdateProfile writes role, fullname, about and profile_url.
	UpdateProfile(ctx context.Context, u *entity.User) error
	SetPassword(ctx context.Context, userID, hash string, at time.Time) error
	SetEmailVerified(ctx context.Context, userID string, at time.Time) error
	// AddFavorite appends ideaID unless it is already present. added is false
	// when the set was left unchanged; favorites is the stored set either way.
	AddFavorite(ctx context.Context, userID, ideaID string, at time.Time) (favorites []string, added bool, err error)
}
