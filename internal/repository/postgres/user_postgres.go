package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"assetcat/internal/model"
	"assetcat/internal/repository"
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

// FindByID fetches a single user with role and explicit capability grants.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, name, role, capabilities FROM users WHERE id = $1`

	var (
		u    model.User
		caps []byte
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Name, &u.Role, &caps); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(caps, &u.Capabilities); err != nil {
		return nil, fmt.Errorf("decode capabilities: %w", err)
	}
	return &u, nil
}
