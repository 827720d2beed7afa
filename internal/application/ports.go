package application

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
)

// Notifier delivers account mail. Implementations live in pkg/mailer.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, name, link string) error
	SendPasswordResetEmail(ctx context.Context, to, name, link string, expiresAt time.Time) error
	SendContactMessage(ctx context.Context, msg entity.ContactMessage) error
}

// ObjectStore keeps uploaded images and returns a public URL for them.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// IdeaIndexer mirrors ideas into a full-text index. Search returns idea ids
// ordered by relevance.
type IdeaIndexer interface {
	Index(ctx context.Context, idea entity.IdeaView) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, size int) ([]string, error)
}

// IdentityCache short-circuits session resolution. A miss returns found=false.
type IdentityCache interface {
	Get(ctx context.Context, email string) (id entity.Identity, found bool, err error)
	Set(ctx context.Context, id entity.Identity) error
	Invalidate(ctx context.Context, email string) error
}

// Image is an uploaded file as received by the HTTP layer.
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// lookup maps a repository read error to what callers of a service see.
func lookup(err error, notFound string) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.NotFound(notFound)
	}
	return persist(err, "storage failure")
}

// persist keeps typed errors intact and wraps anything else as Internal.
func persist(err error, msg string) error {
	if err == nil {
		return nil
	}
	var e *errs.Error
	if errors.As(err, &e) {
		return e
	}
	return errs.Internal(msg, err)
}

// tokenError maps TokenAuthority failures onto the taxonomy.
func tokenError(err error) error {
	switch {
	case errors.Is(err, helpers.ErrTokenExpired):
		return &errs.Error{Kind: errs.KindUnauthorized, Message: "token has expired", Err: err}
	case errors.Is(err, helpers.ErrTokenInvalid):
		return &errs.Error{Kind: errs.KindUnauthorized, Message: "invalid token", Err: err}
	case errors.Is(err, helpers.ErrSigningKeyMissing):
		return errs.Internal("token signing key is missing", err)
	default:
		return errs.Internal("unable to sign token", err)
	}
}
