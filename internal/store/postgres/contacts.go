package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/contacts/internal/contacts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	insertContactSQL = `INSERT INTO contacts (owner_id, name, is_favorite, import_id) VALUES ($1, $2, $3, $4) RETURNING id`
	insertMethodSQL  = `INSERT INTO contact_methods (contact_id, type, value, label) VALUES ($1, $2, $3, $4)`
	deleteMethodsSQL = `DELETE FROM contact_methods WHERE contact_id = $1`
	renameContactSQL = `UPDATE contacts SET name = $2 WHERE id = $1`
	lockContactSQL   = `SELECT id FROM contacts WHERE id = $1 FOR UPDATE`
	toggleFavSQL     = `UPDATE contacts SET is_favorite = NOT is_favorite WHERE id = $1 RETURNING is_favorite`
	deleteContactSQL = `DELETE FROM contacts WHERE id = $1`
	countContactsSQL = `SELECT COUNT(*) FROM contacts WHERE owner_id = $1`
	deleteImportSQL  = `DELETE FROM contacts WHERE owner_id = $1 AND import_id = $2`

	listContactsSQL = `
		SELECT c.id, c.name, c.is_favorite, m.id, m.type, m.value, m.label
		FROM contacts c
		LEFT JOIN contact_methods m ON m.contact_id = c.id
		WHERE c.owner_id = $1
		ORDER BY c.id, m.id`

	exportRowsSQL = `
		SELECT c.id, c.name, c.is_favorite, m.type, m.value, m.label
		FROM contacts c
		LEFT JOIN contact_methods m ON m.contact_id = c.id
		WHERE c.owner_id = $1
		ORDER BY c.id, m.type, m.id`
)

var methodColumns = []string{"contact_id", "type", "value", "label"}

func validateNew(op string, c contacts.NewContact) error {
	if c.Name == "" {
		return contacts.Validationf(op, "name", "required field is empty")
	}
	return contacts.CheckMethods(op, c.Methods)
}

func insertContact(ctx context.Context, tx pgx.Tx, c contacts.NewContact) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, insertContactSQL, c.OwnerID, c.Name, c.IsFavorite, toPgUUID(c.ImportID)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", err)
	}
	return id, nil
}

func insertMethods(ctx context.Context, tx pgx.Tx, contactID int64, methods []contacts.Method) error {
	for i, m := range methods {
		if _, err := tx.Exec(ctx, insertMethodSQL, contactID, string(m.Type), m.Value, toPgText(m.Label)); err != nil {
			return fmt.Errorf("insert method %d: %w", i, err)
		}
	}
	return nil
}

func (s *Store) CreateContact(ctx context.Context, c contacts.NewContact) (int64, error) {
	const op = "create contact"

	if err := validateNew(op, c); err != nil {
		return 0, err
	}

	var id int64
	err := s.inTx(ctx, op, func(tx pgx.Tx) error {
		var err error
		if id, err = insertContact(ctx, tx, c); err != nil {
			return err
		}
		return insertMethods(ctx, tx, id, c.Methods)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) ListContacts(ctx context.Context, ownerID int64) ([]contacts.Contact, error) {
	const op = "list contacts"

	rows, err := s.db.Query(ctx, listContactsSQL, ownerID)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	out := make([]contacts.Contact, 0)
	for rows.Next() {
		var (
			id          int64
			name        string
			isFavorite  bool
			methodID    pgtype.Int8
			methodType  pgtype.Text
			methodValue pgtype.Text
			methodLabel pgtype.Text
		)
		if err := rows.Scan(&id, &name, &isFavorite, &methodID, &methodType, &methodValue, &methodLabel); err != nil {
			return nil, mapError(op, fmt.Errorf("scan contact: %w", err))
		}

		if n := len(out); n == 0 || out[n-1].ID != id {
			out = append(out, contacts.Contact{
				ID:         id,
				OwnerID:    ownerID,
				Name:       name,
				IsFavorite: isFavorite,
				Methods:    make([]contacts.Method, 0),
			})
		}
		if methodID.Valid {
			c := &out[len(out)-1]
			c.Methods = append(c.Methods, contacts.Method{
				ID:        methodID.Int64,
				ContactID: id,
				Type:      contacts.MethodType(methodType.String),
				Value:     methodValue.String,
				Label:     methodLabel.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, fmt.Errorf("rows error: %w", err))
	}
	return out, nil
}

func (s *Store) UpdateContact(ctx context.Context, contactID int64, name string, methods []contacts.Method) error {
	const op = "update contact"

	if name == "" {
		return contacts.Validationf(op, "name", "required field is empty")
	}
	if err := contacts.CheckMethods(op, methods); err != nil {
		return err
	}

	return s.inTx(ctx, op, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, renameContactSQL, contactID, name)
		if err != nil {
			return fmt.Errorf("rename contact: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return contacts.NotFoundf(op, "contact not found")
		}
		return replaceMethods(ctx, tx, contactID, methods)
	})
}

func (s *Store) ReplaceMethods(ctx context.Context, contactID int64, methods []contacts.Method) error {
	const op = "sync methods"

	if err := contacts.CheckMethods(op, methods); err != nil {
		return err
	}

	return s.inTx(ctx, op, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, lockContactSQL, contactID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return contacts.NotFoundf(op, "contact not found")
		}
		if err != nil {
			return fmt.Errorf("lock contact: %w", err)
		}
		return replaceMethods(ctx, tx, contactID, methods)
	})
}

func replaceMethods(ctx context.Context, tx pgx.Tx, contactID int64, methods []contacts.Method) error {
	if _, err := tx.Exec(ctx, deleteMethodsSQL, contactID); err != nil {
		return fmt.Errorf("delete methods: %w", err)
	}
	return insertMethods(ctx, tx, contactID, methods)
}

func (s *Store) ToggleFavorite(ctx context.Context, contactID int64) (bool, error) {
	const op = "toggle favorite"

	var fav bool
	err := s.db.QueryRow(ctx, toggleFavSQL, contactID).Scan(&fav)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, contacts.NotFoundf(op, "contact not found")
	}
	if err != nil {
		return false, mapError(op, err)
	}
	return fav, nil
}

func (s *Store) DeleteContact(ctx context.Context, contactID int64) error {
	if _, err := s.db.Exec(ctx, deleteContactSQL, contactID); err != nil {
		return mapError("delete contact", err)
	}
	return nil
}

func (s *Store) CountContacts(ctx context.Context, ownerID int64) (int, error) {
	var n int64
	if err := s.db.QueryRow(ctx, countContactsSQL, ownerID).Scan(&n); err != nil {
		return 0, mapError("count contacts", err)
	}
	return int(n), nil
}

func (s *Store) ExportRows(ctx context.Context, ownerID int64) ([]contacts.ExportRow, error) {
	const op = "export"

	rows, err := s.db.Query(ctx, exportRowsSQL, ownerID)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var out []contacts.ExportRow
	for rows.Next() {
		var (
			r                        contacts.ExportRow
			methodType, value, label pgtype.Text
		)
		if err := rows.Scan(&r.ContactID, &r.Name, &r.IsFavorite, &methodType, &value, &label); err != nil {
			return nil, mapError(op, fmt.Errorf("scan export row: %w", err))
		}
		r.MethodType = contacts.MethodType(methodType.String)
		r.MethodValue = value.String
		r.MethodLabel = label.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, fmt.Errorf("rows error: %w", err))
	}
	return out, nil
}

// ImportContacts inserts every contact row by row, then bulk-copies all of
// their methods, in one transaction.
func (s *Store) ImportContacts(ctx context.Context, batch []contacts.NewContact) (int, error) {
	const op = "import"

	for _, c := range batch {
		if err := validateNew(op, c); err != nil {
			return 0, err
		}
	}

	err := s.inTx(ctx, op, func(tx pgx.Tx) error {
		var methodRows [][]any
		for i, c := range batch {
			id, err := insertContact(ctx, tx, c)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			for _, m := range c.Methods {
				methodRows = append(methodRows, []any{id, string(m.Type), m.Value, toPgText(m.Label)})
			}
		}

		if len(methodRows) == 0 {
			return nil
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"contact_methods"}, methodColumns, pgx.CopyFromRows(methodRows))
		if err != nil {
			return fmt.Errorf("copy methods: %w", err)
		}
		if n != int64(len(methodRows)) {
			return fmt.Errorf("copy methods: wrote %d of %d rows", n, len(methodRows))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(batch), nil
}

func (s *Store) DeleteImport(ctx context.Context, ownerID int64, importID uuid.UUID) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteImportSQL, ownerID, toPgUUID(importID))
	if err != nil {
		return 0, mapError("rollback import", err)
	}
	return tag.RowsAffected(), nil
}
