package user

import (
	"context"
	"time"

	"github.com/Chasekung/Finance-Club/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Create hashes the password and inserts a new user, returning its id.
func Create(ctx context.Context, db *sqlx.DB, username, password, fullName string, isAdmin bool) (string, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	query := db.Rebind(`
		INSERT INTO users (id, username, password, full_name, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err = db.ExecContext(ctx, query,
		id, username, hashedPassword, fullName, isAdmin, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return id, nil
}

// FindByUsername returns the user with the given username, or sql.ErrNoRows.
func FindByUsername(ctx context.Context, db *sqlx.DB, username string) (*User, error) {
	var u User
	query := db.Rebind(`
		SELECT id, username, password, full_name, is_admin, created_at
		FROM users WHERE username = ?
	`)
	if err := db.GetContext(ctx, &u, query, username); err != nil {
		return nil, err
	}
	return &u, nil
}
