package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/notification-preferences/internal/model"
)

const userColumns = "id, email, password_hash, is_active, locale, created_at, updated_at"

// UserRepo reads and writes rows of the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u and fills in its ID and timestamps.  The password must
// already be hashed.  A duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, is_active, locale) VALUES (?,?,?,?)",
		u.Email, u.PasswordHash, u.IsActive, u.Locale)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)

	// Read back the timestamps defaulted by the database.
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM users WHERE id=?", u.ID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// UpdateLocale changes the preferred locale of a user.
func (r *UserRepo) UpdateLocale(ctx context.Context, id uint64, locale string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET locale=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", locale, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.Locale, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}
