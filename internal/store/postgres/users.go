package postgres

import (
	"context"
	"errors"

	"github.com/JonMunkholm/contacts/internal/contacts"
	"github.com/jackc/pgx/v5"
)

const (
	insertUserSQL = `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`
	getUserSQL    = `SELECT id, username, password_hash FROM users WHERE username = $1`
)

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	if err := s.db.QueryRow(ctx, insertUserSQL, username, passwordHash).Scan(&id); err != nil {
		return 0, mapError("register", err)
	}
	return id, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (contacts.User, error) {
	var u contacts.User
	err := s.db.QueryRow(ctx, getUserSQL, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return contacts.User{}, contacts.NotFoundf("get user", "user not found")
	}
	if err != nil {
		return contacts.User{}, mapError("get user", err)
	}
	return u, nil
}
