package repository

import (
	"context"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
)

// CommentRepository persists comment threads.
type CommentRepository interface {
	// Create stores a top-level comment.
	Create(ctx context.Context, c *entity.Comment) error
	// CreateReply stores c and appends its id to the parent's replies as one
	// atomic write. It fails with errs.ErrNotFound when the parent is gone.
	CreateReply(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	// ListByIdea returns top-level comments newest first, each with its
	// replies newest first.
	ListByIdea(ctx context.Context, ideaID string) ([]entity.CommentView, error)
}
