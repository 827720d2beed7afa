package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	"github.com/faizi-7/graveyard-back/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password, fullname, about, profile_url, email_verified, role, favorites, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Fullname, &u.About, &u.ProfileURL,
		&u.EmailVerified, &role, &u.Favorites, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	favorites := u.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, u.ID, u.Username, u.Email, u.Password, u.Fullname, u.About, u.ProfileURL,
		u.EmailVerified, string(u.Role), favorites, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.Conflict("user already exists")
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func execOne(ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) error {
	res, err := pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	return execOne(ctx, r.pool, `
		UPDATE users
		SET role = $2, fullname = $3, about = $4, profile_url = $5, updated_at = $6
		WHERE id = $1
	`, u.ID, string(u.Role), u.Fullname, u.About, u.ProfileURL, u.UpdatedAt)
}

func (r *UserRepository) SetPassword(ctx context.Context, userID, hash string, at time.Time) error {
	return execOne(ctx, r.pool, `UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`, userID, hash, at)
}

func (r *UserRepository) SetEmailVerified(ctx context.Context, userID string, at time.Time) error {
	return execOne(ctx, r.pool, `UPDATE users SET email_verified = TRUE, updated_at = $2 WHERE id = $1`, userID, at)
}

// AddFavorite appends in a single statement; the membership check and the
// append see the same row version.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, ideaID string, at time.Time) ([]string, bool, error) {
	var favorites []string
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET favorites = array_append(favorites, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(favorites))
		RETURNING favorites
	`, userID, ideaID, at).Scan(&favorites)
	if err == nil {
		return favorites, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	// Either the user is gone or the idea was already there.
	err = r.pool.QueryRow(ctx, `SELECT favorites FROM users WHERE id = $1`, userID).Scan(&favorites)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, errs.ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return favorites, false, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
