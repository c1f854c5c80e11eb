package contacts

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/contacts/internal/logging"
	"github.com/google/uuid"
)

// DefaultImportTimeout bounds a single import transaction.
const DefaultImportTimeout = 5 * time.Minute

// Options tunes a Service. Zero values select defaults.
type Options struct {
	MaxConcurrentImports int
	ImportWait           time.Duration
	ImportTimeout        time.Duration
	BcryptCost           int
}

// Service implements the contact operations on top of a Store.
type Service struct {
	store         Store
	limiter       *ImportLimiter
	hasher        PasswordHasher
	importTimeout time.Duration
}

// NewService creates a Service backed by store.
func NewService(store Store, opts Options) *Service {
	timeout := opts.ImportTimeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		store:         store,
		limiter:       NewImportLimiter(opts.MaxConcurrentImports, opts.ImportWait),
		hasher:        BcryptHasher{Cost: opts.BcryptCost},
		importTimeout: timeout,
	}
}

func requireOwner(op string, ownerID int64) error {
	if ownerID <= 0 {
		return Validationf(op, "user_id", "required field is missing")
	}
	return nil
}

func requireContact(op string, contactID int64) error {
	if contactID <= 0 {
		return Validationf(op, "contact_id", "required field is missing")
	}
	return nil
}

func requireName(op, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Validationf(op, "name", "required field is empty")
	}
	return name, nil
}

// CreateContact inserts a contact and its initial methods.
func (s *Service) CreateContact(ctx context.Context, req CreateContactRequest) (int64, error) {
	const op = "create contact"

	if err := requireOwner(op, req.OwnerID); err != nil {
		return 0, err
	}
	name, err := requireName(op, req.Name)
	if err != nil {
		return 0, err
	}
	methods, err := PrepareMethods(op, req.Methods)
	if err != nil {
		return 0, err
	}

	id, err := s.store.CreateContact(ctx, NewContact{
		OwnerID: req.OwnerID,
		Name:    name,
		Methods: methods,
	})
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Debug("contact created", "contact_id", id, "owner_id", req.OwnerID, "methods", len(methods))
	return id, nil
}

// ListContacts returns every contact of ownerID with its methods.
func (s *Service) ListContacts(ctx context.Context, ownerID int64) ([]Contact, error) {
	if err := requireOwner("list contacts", ownerID); err != nil {
		return nil, err
	}
	return s.store.ListContacts(ctx, ownerID)
}

// UpdateContact renames a contact and replaces its whole method set.
// Methods missing from req are deleted.
func (s *Service) UpdateContact(ctx context.Context, req UpdateContactRequest) error {
	const op = "update contact"

	if err := requireContact(op, req.ContactID); err != nil {
		return err
	}
	name, err := requireName(op, req.Name)
	if err != nil {
		return err
	}
	methods, err := PrepareMethods(op, req.Methods)
	if err != nil {
		return err
	}

	return s.store.UpdateContact(ctx, req.ContactID, name, methods)
}

// SyncMethods replaces the method set of a contact without touching its
// name.
func (s *Service) SyncMethods(ctx context.Context, contactID int64, inputs []MethodInput) error {
	const op = "sync methods"

	if err := requireContact(op, contactID); err != nil {
		return err
	}
	methods, err := PrepareMethods(op, inputs)
	if err != nil {
		return err
	}
	return s.store.ReplaceMethods(ctx, contactID, methods)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Service) ToggleFavorite(ctx context.Context, contactID int64) (bool, error) {
	if err := requireContact("toggle favorite", contactID); err != nil {
		return false, err
	}
	return s.store.ToggleFavorite(ctx, contactID)
}

// DeleteContact removes a contact and its methods. Deleting an id that does
// not exist succeeds.
func (s *Service) DeleteContact(ctx context.Context, contactID int64) error {
	if err := requireContact("delete contact", contactID); err != nil {
		return err
	}
	return s.store.DeleteContact(ctx, contactID)
}

// CountContacts returns the number of contacts owned by ownerID.
func (s *Service) CountContacts(ctx context.Context, ownerID int64) (int, error) {
	if err := requireOwner("count contacts", ownerID); err != nil {
		return 0, err
	}
	return s.store.CountContacts(ctx, ownerID)
}

// Export returns one flattened row per contact of ownerID.
func (s *Service) Export(ctx context.Context, ownerID int64) ([]FlatRow, error) {
	if err := requireOwner("export", ownerID); err != nil {
		return nil, err
	}
	rows, err := s.store.ExportRows(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return Flatten(rows), nil
}

// Import parses an uploaded document and inserts every row as a new
// contact in one transaction. Existing contacts with the same name are
// left alone.
func (s *Service) Import(ctx context.Context, ownerID int64, filename string, r io.Reader) (ImportResult, error) {
	const op = "import"

	if err := requireOwner(op, ownerID); err != nil {
		return ImportResult{}, err
	}
	if !SupportedExtension(filename) {
		return ImportResult{}, Formatf(op, "unsupported file type %q (upload .xlsx or .csv)", filename)
	}

	records, err := ReadTable(filename, r)
	if err != nil {
		return ImportResult{}, err
	}
	parsed, err := Expand(records)
	if err != nil {
		return ImportResult{}, err
	}

	importID := uuid.New()
	log := logging.WithFields(ctx, "import_id", importID.String(), "owner_id", ownerID, "file", filename)

	if err := s.limiter.Acquire(ctx); err != nil {
		log.Warn("import rejected", "error", err)
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	importCtx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	for i := range parsed {
		parsed[i].OwnerID = ownerID
		parsed[i].ImportID = importID
	}

	start := time.Now()
	n, err := s.store.ImportContacts(importCtx, parsed)
	if err != nil {
		log.Error("import failed", "rows", len(parsed), "error", err)
		return ImportResult{}, err
	}

	log.Info("import committed", "rows", n, "duration_ms", time.Since(start).Milliseconds())
	return ImportResult{ImportID: importID.String(), RowsImported: n}, nil
}

// RollbackImport deletes every contact created by one import.
func (s *Service) RollbackImport(ctx context.Context, ownerID int64, importID string) (RollbackResult, error) {
	const op = "rollback import"

	result := RollbackResult{ImportID: importID}
	if err := requireOwner(op, ownerID); err != nil {
		return result, err
	}
	id, err := uuid.Parse(importID)
	if err != nil {
		return result, Validationf(op, "import_id", "invalid import id %q", importID)
	}

	n, err := s.store.DeleteImport(ctx, ownerID, id)
	if err != nil {
		return result, err
	}
	if n == 0 {
		return result, NotFoundf(op, "import %s not found", importID)
	}

	result.RowsDeleted = n
	logging.FromContext(ctx).Info("import rolled back", "import_id", importID, "owner_id", ownerID, "rows", n)
	return result, nil
}

// ImportStatus is a snapshot of import concurrency.
type ImportStatus struct {
	Active   int `json:"active"`
	Capacity int `json:"capacity"`
}

// ImportStatus reports how many imports are running.
func (s *Service) ImportStatus() ImportStatus {
	return ImportStatus{Active: s.limiter.Active(), Capacity: s.limiter.Capacity()}
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.Drain(ctx)
}
