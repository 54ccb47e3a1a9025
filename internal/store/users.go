package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUserExists = errors.New("user already exists")

func (s *Store) CreateUser(email, displayName, passwordHash string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.Exec(
		`INSERT INTO users (id, email, display_name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, email, displayName, passwordHash, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.seedDefaultSettings(id); err != nil {
		return nil, err
	}
	return s.GetUser(id)
}

func (s *Store) GetUser(id string) (*User, error) {
	u := &User{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, email, display_name, created_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

// GetUserByEmail returns the user and stored password hash, or (nil, "", nil)
// when no such account exists.
func (s *Store) GetUserByEmail(email string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u := &User{}
	var createdAt, hash string
	err := s.db.QueryRow(
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &hash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get user by email: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, hash, nil
}
