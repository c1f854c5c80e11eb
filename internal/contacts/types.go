package contacts

import (
	"context"

	"github.com/google/uuid"
)

// MethodType is the kind of a contact method.
type MethodType string

const (
	MethodPhone   MethodType = "phone"
	MethodEmail   MethodType = "email"
	MethodSocial  MethodType = "social"
	MethodAddress MethodType = "address"
)

// MethodTypes lists every valid method type in export column order.
var MethodTypes = []MethodType{MethodPhone, MethodEmail, MethodSocial, MethodAddress}

// Valid reports whether t is one of the four known method types.
func (t MethodType) Valid() bool {
	switch t {
	case MethodPhone, MethodEmail, MethodSocial, MethodAddress:
		return true
	}
	return false
}

// User is an account that owns contacts.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Contact is a named entity owned by a user, holding zero or more methods.
type Contact struct {
	ID         int64    `json:"id"`
	OwnerID    int64    `json:"-"`
	Name       string   `json:"name"`
	IsFavorite bool     `json:"is_favorite"`
	Methods    []Method `json:"methods"`
}

// Method is one typed reachability data point belonging to a contact.
type Method struct {
	ID        int64      `json:"id"`
	ContactID int64      `json:"-"`
	Type      MethodType `json:"type"`
	Value     string     `json:"value"`
	Label     string     `json:"label"`
}

// MethodInput is a method as submitted by a caller, before validation.
type MethodInput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// NewContact is a contact to be inserted together with its initial methods.
// Methods must already have passed PrepareMethods.
type NewContact struct {
	OwnerID    int64
	Name       string
	IsFavorite bool
	ImportID   uuid.UUID // uuid.Nil for contacts created outside of an import
	Methods    []Method
}

// ExportRow is one row of the contacts/methods left join used for export.
// MethodType and MethodValue are empty for a contact without methods.
type ExportRow struct {
	ContactID   int64
	Name        string
	IsFavorite  bool
	MethodType  MethodType
	MethodValue string
	MethodLabel string
}

// CreateContactRequest is the input of Service.CreateContact.
type CreateContactRequest struct {
	OwnerID int64         `json:"user_id"`
	Name    string        `json:"name"`
	Methods []MethodInput `json:"methods"`
}

// UpdateContactRequest is the input of Service.UpdateContact.
type UpdateContactRequest struct {
	ContactID int64         `json:"-"`
	Name      string        `json:"name"`
	Methods   []MethodInput `json:"methods"`
}

// ImportResult describes a committed import.
type ImportResult struct {
	ImportID     string `json:"import_id"`
	RowsImported int    `json:"rows_imported"`
}

// RollbackResult describes the removal of one import's contacts.
type RollbackResult struct {
	ImportID    string `json:"import_id"`
	RowsDeleted int64  `json:"rows_deleted"`
}

// Store persists users, contacts and their methods.
//
// Every method executes as a single transaction. Implementations must
// cascade contact deletion to methods and reject method types outside
// MethodTypes with a KindValidation error.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)

	CreateContact(ctx context.Context, c NewContact) (int64, error)
	ListContacts(ctx context.Context, ownerID int64) ([]Contact, error)
	UpdateContact(ctx context.Context, contactID int64, name string, methods []Method) error
	ReplaceMethods(ctx context.Context, contactID int64, methods []Method) error
	ToggleFavorite(ctx context.Context, contactID int64) (bool, error)
	DeleteContact(ctx context.Context, contactID int64) error
	CountContacts(ctx context.Context, ownerID int64) (int, error)

	ExportRows(ctx context.Context, ownerID int64) ([]ExportRow, error)
	ImportContacts(ctx context.Context, contacts []NewContact) (int, error)
	DeleteImport(ctx context.Context, ownerID int64, importID uuid.UUID) (int64, error)
}
