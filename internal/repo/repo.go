package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"teamboard/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// conflictErr maps SQLite unique-constraint violations to ErrConflict
// so callers can rely on the store, not a check-then-insert sequence,
// for uniqueness invariants.
func conflictErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrConflict
	}
	return err
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	if *v == "" {
		return nil
	}
	return *v
}

func nullableInt64Ptr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (r Repo) InsertUser(ctx context.Context, u domain.User, passwordHash string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users(username,email,password_hash,nickname,avatar,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		u.Username, u.Email, passwordHash, nullable(u.Nickname), nullable(u.Avatar), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return 0, conflictErr(err)
	}
	return res.LastInsertId()
}

func scanUser(row *sql.Row) (domain.User, string, error) {
	var u domain.User
	var hash string
	var nickname, avatar sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &hash, &nickname, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, "", ErrNotFound
	}
	if err != nil {
		return u, "", err
	}
	if nickname.Valid {
		u.Nickname = nickname.String
	}
	if avatar.Valid {
		u.Avatar = avatar.String
	}
	return u, hash, nil
}

const userCols = `id,username,email,password_hash,nickname,avatar,created_at,updated_at`

func (r Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	u, _, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=?`, id))
	return u, err
}

// GetUserByUsername also returns the stored password hash for login.
func (r Repo) GetUserByUsername(ctx context.Context, username string) (domain.User, string, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username=?`, username))
}

func (r Repo) GetUserSummary(ctx context.Context, id int64) (domain.UserSummary, error) {
	var s domain.UserSummary
	var nickname, avatar sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id,username,nickname,avatar FROM users WHERE id=?`, id).
		Scan(&s.ID, &s.Username, &nickname, &avatar)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	if err != nil {
		return s, err
	}
	if nickname.Valid {
		s.Nickname = nickname.String
	}
	if avatar.Valid {
		s.Avatar = avatar.String
	}
	return s, nil
}
