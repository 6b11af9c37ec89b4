package postgres

import (
	"context"
	"database/sql"

	"kyccase/internal/model"
	"kyccase/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, username, password, name, role, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Password,
		&u.Name,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
// Duplicate email or username surfaces as repository.ErrDuplicate.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	q := `
		INSERT INTO users (id, email, username, password, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.Username,
		u.Password,
		u.Name,
		u.Role,
		u.CreatedAt,
		u.UpdatedAt,
	)
	out, err := scanUser(row)
	if err != nil {
		return nil, translateUnique(err)
	}
	return out, nil
}

// FindByID fetches a user by ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}
