package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

const userColumns = `id, username, email, full_name, password_hash, avatar, cover_image, refresh_token, created_at, updated_at`

// SQLRepository implements Repository over dbx.DBTX, so it can be bound to
// either a pool or a transaction.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dialect
	now     func() time.Time
}

// NewPostgresRepository binds a repository to a PostgreSQL handle (pgx stdlib driver).
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: postgresDialect, now: time.Now}
}

// NewSQLiteRepository binds a repository to a SQLite handle (modernc driver).
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: sqliteDialect, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var refresh sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Avatar, &u.CoverImage, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.RefreshToken = refresh.String
	return u, nil
}

func (r *SQLRepository) queryUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.dialect.rebind(query), args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *SQLRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if username == "" && email == "" {
		return nil, common.ErrorNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users
		WHERE (username = ? AND ? <> '') OR (email = ? AND ? <> '')
		LIMIT 1`
	return r.queryUser(ctx, query, username, username, email, email)
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.queryUser(ctx, query, id)
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := r.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `INSERT INTO users (id, username, email, full_name, password_hash, avatar, cover_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.dialect.rebind(query),
		user.ID, user.Username, user.Email, user.FullName, user.PasswordHash,
		user.Avatar, user.CoverImage, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if r.dialect.isUniqueViolation(err) {
			return nil, common.ErrDuplicateKey
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *SQLRepository) UpdateFields(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, v *string) {
		if v != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *v)
		}
	}
	add("full_name", patch.FullName)
	add("email", patch.Email)
	add("avatar", patch.Avatar)
	add("cover_image", patch.CoverImage)
	add("password_hash", patch.PasswordHash)

	sets = append(sets, "updated_at = ?")
	args = append(args, r.now().UTC(), id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		if r.dialect.isUniqueViolation(err) {
			return nil, common.ErrDuplicateKey
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *SQLRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	query := `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.dialect.rebind(query),
		sql.NullString{String: token, Valid: token != ""}, r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	if current == "" {
		return false, nil
	}
	query := `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ? AND refresh_token = ?`

	res, err := r.db.ExecContext(ctx, r.dialect.rebind(query),
		sql.NullString{String: next, Valid: next != ""}, r.now().UTC(), id, current)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
