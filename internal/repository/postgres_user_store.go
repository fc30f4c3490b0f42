package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eaglebank/auth-api/shared/models"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// PostgresUserStore persists users in PostgreSQL. Deleted users are kept
// with deleted_at set and are invisible to every lookup.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Create inserts a user with an explicit id. Re-seeding an existing id is a no-op.
func (r *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, name, email, role, password_hash) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, nullString(user.Role), user.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, role, password_hash FROM users WHERE email = $1 AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, name, email, role, password_hash FROM users WHERE id = $1 AND deleted_at IS NULL`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresUserStore) Update(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = $2, email = $3, role = $4, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, nullString(user.Role),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOneRow(result)
}

func (r *PostgresUserStore) Remove(ctx context.Context, id int64) error {
	query := `UPDATE users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOneRow(result)
}

func (r *PostgresUserStore) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var role sql.NullString

	err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if role.Valid {
		user.Role = role.String
	}
	return &user, nil
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
