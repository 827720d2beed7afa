package repository

import (
	"context"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
)

// IdeaRepository persists ideas and their voter records.
//
// SaveVote writes the aggregate and the single changed voter record. It does
// not compare against the version that was read, so two concurrent
// read-modify-write cycles on the same idea can lose an update.
type IdeaRepository interface {
	Create(ctx context.Context, i *entity.Idea) error
	GetByID(ctx context.Context, id string) (*entity.Idea, error)
	Update(ctx context.Context, i *entity.Idea) error
	Delete(ctx context.Context, id string) error
	SaveVote(ctx context.Context, ideaID string, votes int, v entity.Voter) error

	GetView(ctx context.Context, id string) (*entity.IdeaView, error)
	ListViews(ctx context.Context) ([]entity.IdeaView, error)
	ListViewsByIDs(ctx context.Context, ids []string) ([]entity.IdeaView, error)
}
