// Package postgres implements contacts.Store on PostgreSQL through pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/JonMunkholm/contacts/internal/contacts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

//go:embed schema.sql
var schemaSQL string

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is a contacts.Store backed by PostgreSQL.
type Store struct {
	db DB
}

var _ contacts.Store = (*Store)(nil)

// New returns a Store using db.
func New(db DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// inTx runs fn in a transaction, committing when fn succeeds.
func (s *Store) inTx(ctx context.Context, op string, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return mapError(op, fmt.Errorf("begin transaction: %w", err))
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return mapError(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(op, fmt.Errorf("commit: %w", err))
	}
	return nil
}

// Postgres error codes the store translates.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// mapError converts driver errors to contacts errors.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if pgErr.ConstraintName == "users_username_key" || pgErr.TableName == "users" {
				return contacts.Conflictf(op, "username already exists")
			}
			return &contacts.Error{Kind: contacts.KindConflict, Op: op, Message: "duplicate key", Err: err}
		case codeForeignKeyViolation:
			msg := "user not found"
			if pgErr.TableName == "contact_methods" {
				msg = "contact not found"
			}
			return &contacts.Error{Kind: contacts.KindNotFound, Op: op, Message: msg, Err: err}
		case codeCheckViolation, codeNotNullViolation:
			return &contacts.Error{Kind: contacts.KindValidation, Op: op, Field: pgErr.ColumnName, Message: "constraint violated: " + pgErr.ConstraintName, Err: err}
		}
	}

	return contacts.StorageError(op, err)
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}
