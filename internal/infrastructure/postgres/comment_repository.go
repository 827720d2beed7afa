package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	"github.com/faizi-7/graveyard-back/internal/domain/repository"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO comments (id, content, creator_id, idea_id, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Content, c.CreatorID, c.IdeaID, nullable(c.ParentID), c.CreatedAt, c.UpdatedAt)
	return err
}

// CreateReply inserts the child and links it from its top-level parent in a
// single transaction, so a reply is never stored without its link.
func (r *CommentRepository) CreateReply(ctx context.Context, c *entity.Comment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		UPDATE comments SET replies = array_append(replies, $2), updated_at = now()
		WHERE id = $1 AND parent_id IS NULL
	`, c.ParentID, c.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO comments (id, content, creator_id, idea_id, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Content, c.CreatorID, c.IdeaID, c.ParentID, c.CreatedAt, c.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	c := &entity.Comment{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, content, creator_id, idea_id, COALESCE(parent_id, ''), replies, created_at, updated_at
		FROM comments WHERE id = $1
	`, id).Scan(&c.ID, &c.Content, &c.CreatorID, &c.IdeaID, &c.ParentID, &c.Replies, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByIdea loads the whole thread in one query and nests replies under
// their parents. Both levels come back newest first.
func (r *CommentRepository) ListByIdea(ctx context.Context, ideaID string) ([]entity.CommentView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.content, c.idea_id, COALESCE(c.parent_id, ''), c.created_at,
		       u.id, u.username, u.fullname, u.profile_url, u.role
		FROM comments c
		JOIN users u ON u.id = c.creator_id
		WHERE c.idea_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`, ideaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []entity.CommentView
	replies := map[string][]entity.CommentView{}
	for rows.Next() {
		var v entity.CommentView
		var role string
		if err := rows.Scan(&v.ID, &v.Content, &v.IdeaID, &v.ParentID, &v.CreatedAt,
			&v.Creator.ID, &v.Creator.Username, &v.Creator.Fullname, &v.Creator.ProfileURL, &role); err != nil {
			return nil, err
		}
		v.Creator.Role = entity.Role(role)
		if v.ParentID == "" {
			top = append(top, v)
		} else {
			replies[v.ParentID] = append(replies[v.ParentID], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]entity.CommentView, 0, len(top))
	for _, v := range top {
		v.Replies = replies[v.ID]
		out = append(out, v)
	}
	return out, nil
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
