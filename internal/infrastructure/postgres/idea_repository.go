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

type IdeaRepository struct {
	pool *pgxpool.Pool
}

func NewIdeaRepository(pool *pgxpool.Pool) *IdeaRepository {
	return &IdeaRepository{pool: pool}
}

const ideaColumns = `id, title, description, creator_id, tags, votes, is_original, source_description, donation_qr_url, implemented, created_at, updated_at`

// ideaViewSelect joins the creator's public fields onto every idea row.
const ideaViewSelect = `
	SELECT i.id, i.title, i.description, i.tags, i.votes, i.is_original, i.source_description,
	       i.donation_qr_url, i.implemented, i.created_at, i.updated_at,
	       u.id, u.username, u.fullname, u.profile_url, u.role
	FROM ideas i
	JOIN users u ON u.id = i.creator_id`

func scanIdeaView(row pgx.Row) (entity.IdeaView, error) {
	var v entity.IdeaView
	var role string
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Tags, &v.Votes, &v.IsOriginal, &v.SourceDescription,
		&v.DonationQRURL, &v.Implemented, &v.CreatedAt, &v.UpdatedAt,
		&v.Creator.ID, &v.Creator.Username, &v.Creator.Fullname, &v.Creator.ProfileURL, &role)
	v.Creator.Role = entity.Role(role)
	return v, err
}

func (r *IdeaRepository) Create(ctx context.Context, i *entity.Idea) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ideas (`+ideaColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, i.ID, i.Title, i.Description, i.CreatorID, i.Tags, i.Votes, i.IsOriginal, i.SourceDescription,
		i.DonationQRURL, i.Implemented, i.CreatedAt, i.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.Conflict("idea already exists")
	}
	return err
}

// GetByID loads the idea together with all of its voter records.
func (r *IdeaRepository) GetByID(ctx context.Context, id string) (*entity.Idea, error) {
	i := &entity.Idea{}
	err := r.pool.QueryRow(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id = $1`, id).Scan(
		&i.ID, &i.Title, &i.Description, &i.CreatorID, &i.Tags, &i.Votes, &i.IsOriginal, &i.SourceDescription,
		&i.DonationQRURL, &i.Implemented, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT user_id, direction FROM idea_voters WHERE idea_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v entity.Voter
		var dir int16
		if err := rows.Scan(&v.UserID, &dir); err != nil {
			return nil, err
		}
		v.Direction = entity.Direction(dir)
		i.Voters = append(i.Voters, v)
	}
	return i, rows.Err()
}

// Update writes the editable fields. Votes only change through SaveVote.
func (r *IdeaRepository) Update(ctx context.Context, i *entity.Idea) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE ideas
		SET title = $2, description = $3, tags = $4, is_original = $5, source_description = $6,
		    donation_qr_url = $7, implemented = $8, updated_at = $9
		WHERE id = $1
	`, i.ID, i.Title, i.Description, i.Tags, i.IsOriginal, i.SourceDescription, i.DonationQRURL, i.Implemented, i.UpdatedAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the idea; voters and comments go with it via ON DELETE CASCADE.
func (r *IdeaRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SaveVote stores the aggregate as an absolute value and upserts the voter
// record in one transaction. The aggregate is not compared with the value the
// caller read.
func (r *IdeaRepository) SaveVote(ctx context.Context, ideaID string, votes int, v entity.Voter) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `UPDATE ideas SET votes = $2 WHERE id = $1`, ideaID, votes)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO idea_voters (idea_id, user_id, direction)
		VALUES ($1, $2, $3)
		ON CONFLICT (idea_id, user_id) DO UPDATE SET direction = EXCLUDED.direction
	`, ideaID, v.UserID, int16(v.Direction)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *IdeaRepository) GetView(ctx context.Context, id string) (*entity.IdeaView, error) {
	v, err := scanIdeaView(r.pool.QueryRow(ctx, ideaViewSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *IdeaRepository) listViews(ctx context.Context, sql string, args ...any) ([]entity.IdeaView, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []entity.IdeaView{}
	for rows.Next() {
		v, err := scanIdeaView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *IdeaRepository) ListViews(ctx context.Context) ([]entity.IdeaView, error) {
	return r.listViews(ctx, ideaViewSelect+` ORDER BY i.created_at DESC, i.id DESC`)
}

// ListViewsByIDs skips ids that no longer exist and keeps the order of ids.
func (r *IdeaRepository) ListViewsByIDs(ctx context.Context, ids []string) ([]entity.IdeaView, error) {
	if len(ids) == 0 {
		return []entity.IdeaView{}, nil
	}
	views, err := r.listViews(ctx, ideaViewSelect+` WHERE i.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.IdeaView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}
	out := make([]entity.IdeaView, 0, len(views))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

var _ repository.IdeaRepository = (*IdeaRepository)(nil)
