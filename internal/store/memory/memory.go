// Package memory is an in-process contacts.Store.
//
// All state lives behind one mutex, so every operation is atomic and
// isolated the way a single database transaction would be. Nothing is
// persisted; the store backs local development (STORE_DRIVER=memory) and
// tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/JonMunkholm/contacts/internal/contacts"
	"github.com/google/uuid"
)

type contactRecord struct {
	id         int64
	ownerID    int64
	name       string
	isFavorite bool
	importID   uuid.UUID
}

// Store implements contacts.Store in memory.
type Store struct {
	mu sync.RWMutex

	nextUserID    int64
	nextContactID int64
	nextMethodID  int64

	users     map[int64]contacts.User
	usernames map[string]int64
	contacts  map[int64]*contactRecord
	methods   map[int64]contacts.Method
	byContact map[int64][]int64 // contact id -> method ids, ascending
}

var _ contacts.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		users:     make(map[int64]contacts.User),
		usernames: make(map[string]int64),
		contacts:  make(map[int64]*contactRecord),
		methods:   make(map[int64]contacts.Method),
		byContact: make(map[int64][]int64),
	}
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[username]; taken {
		return 0, contacts.Conflictf("register", "username already exists")
	}
	s.nextUserID++
	id := s.nextUserID
	s.users[id] = contacts.User{ID: id, Username: username, PasswordHash: passwordHash}
	s.usernames[username] = id
	return id, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (contacts.User, error) {
	if err := ctx.Err(); err != nil {
		return contacts.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return contacts.User{}, contacts.NotFoundf("get user", "user not found")
	}
	return s.users[id], nil
}

func (s *Store) CreateContact(ctx context.Context, c contacts.NewContact) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.checkNew("create contact", c); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[c.OwnerID]; !ok {
		return 0, contacts.NotFoundf("create contact", "user not found")
	}
	return s.insertLocked(c), nil
}

func (s *Store) checkNew(op string, c contacts.NewContact) error {
	if c.Name == "" {
		return contacts.Validationf(op, "name", "required field is empty")
	}
	return contacts.CheckMethods(op, c.Methods)
}

// insertLocked adds c and its methods. Callers hold s.mu and have validated c.
func (s *Store) insertLocked(c contacts.NewContact) int64 {
	s.nextContactID++
	id := s.nextContactID
	s.contacts[id] = &contactRecord{
		id:         id,
		ownerID:    c.OwnerID,
		name:       c.Name,
		isFavorite: c.IsFavorite,
		importID:   c.ImportID,
	}
	s.addMethodsLocked(id, c.Methods)
	return id
}

func (s *Store) addMethodsLocked(contactID int64, methods []contacts.Method) {
	for _, m := range methods {
		s.nextMethodID++
		m.ID = s.nextMethodID
		m.ContactID = contactID
		s.methods[m.ID] = m
		s.byContact[contactID] = append(s.byContact[contactID], m.ID)
	}
}

func (s *Store) deleteMethodsLocked(contactID int64) {
	for _, mid := range s.byContact[contactID] {
		delete(s.methods, mid)
	}
	delete(s.byContact, contactID)
}

func (s *Store) ListContacts(ctx context.Context, ownerID int64) ([]contacts.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contacts.Contact, 0)
	for _, rec := range s.ownedLocked(ownerID) {
		c := contacts.Contact{
			ID:         rec.id,
			OwnerID:    rec.ownerID,
			Name:       rec.name,
			IsFavorite: rec.isFavorite,
			Methods:    make([]contacts.Method, 0, len(s.byContact[rec.id])),
		}
		for _, mid := range s.byContact[rec.id] {
			c.Methods = append(c.Methods, s.methods[mid])
		}
		out = append(out, c)
	}
	return out, nil
}

// ownedLocked returns the contacts of ownerID ordered by id.
func (s *Store) ownedLocked(ownerID int64) []*contactRecord {
	var recs []*contactRecord
	for _, rec := range s.contacts {
		if rec.ownerID == ownerID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].id < recs[j].id })
	return recs
}

func (s *Store) UpdateContact(ctx context.Context, contactID int64, name string, methods []contacts.Method) error {
	const op = "update contact"

	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return contacts.Validationf(op, "name", "required field is empty")
	}
	if err := contacts.CheckMethods(op, methods); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.contacts[contactID]
	if !ok {
		return contacts.NotFoundf(op, "contact not found")
	}
	rec.name = name
	s.deleteMethodsLocked(contactID)
	s.addMethodsLocked(contactID, methods)
	return nil
}

func (s *Store) ReplaceMethods(ctx context.Context, contactID int64, methods []contacts.Method) error {
	const op = "sync methods"

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := contacts.CheckMethods(op, methods); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[contactID]; !ok {
		return contacts.NotFoundf(op, "contact not found")
	}
	s.deleteMethodsLocked(contactID)
	s.addMethodsLocked(contactID, methods)
	return nil
}

func (s *Store) ToggleFavorite(ctx context.Context, contactID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.contacts[contactID]
	if !ok {
		return false, contacts.NotFoundf("toggle favorite", "contact not found")
	}
	rec.isFavorite = !rec.isFavorite
	return rec.isFavorite, nil
}

func (s *Store) DeleteContact(ctx context.Context, contactID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteMethodsLocked(contactID)
	delete(s.contacts, contactID)
	return nil
}

func (s *Store) CountContacts(ctx context.Context, ownerID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.contacts {
		if rec.ownerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *Store) ExportRows(ctx context.Context, ownerID int64) ([]contacts.ExportRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []contacts.ExportRow
	for _, rec := range s.ownedLocked(ownerID) {
		base := contacts.ExportRow{ContactID: rec.id, Name: rec.name, IsFavorite: rec.isFavorite}

		mids := s.byContact[rec.id]
		if len(mids) == 0 {
			rows = append(rows, base)
			continue
		}

		ms := make([]contacts.Method, 0, len(mids))
		for _, mid := range mids {
			ms = append(ms, s.methods[mid])
		}
		sort.SliceStable(ms, func(i, j int) bool {
			if ms[i].Type != ms[j].Type {
				return ms[i].Type < ms[j].Type
			}
			return ms[i].ID < ms[j].ID
		})

		for _, m := range ms {
			r := base
			r.MethodType = m.Type
			r.MethodValue = m.Value
			r.MethodLabel = m.Label
			rows = append(rows, r)
		}
	}
	return rows, nil
}

func (s *Store) ImportContacts(ctx context.Context, batch []contacts.NewContact) (int, error) {
	const op = "import"

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for _, c := range batch {
		if err := s.checkNew(op, c); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range batch {
		if _, ok := s.users[c.OwnerID]; !ok {
			return 0, contacts.NotFoundf(op, "user not found")
		}
	}
	for _, c := range batch {
		s.insertLocked(c)
	}
	return len(batch), nil
}

func (s *Store) DeleteImport(ctx context.Context, ownerID int64, importID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.contacts {
		if rec.ownerID == ownerID && rec.importID == importID && importID != uuid.Nil {
			s.deleteMethodsLocked(id)
			delete(s.contacts, id)
			n++
		}
	}
	return n, nil
}
