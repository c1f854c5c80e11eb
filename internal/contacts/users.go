package contacts

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// BcryptHasher hashes with bcrypt at Cost (bcrypt.DefaultCost when zero).
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Credentials is the body of register and login requests.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) validate(op string) (string, error) {
	username := strings.TrimSpace(c.Username)
	if username == "" {
		return "", Validationf(op, "username", "required field is empty")
	}
	if c.Password == "" {
		return "", Validationf(op, "password", "required field is empty")
	}
	return username, nil
}

// Register creates a user. A taken username yields KindConflict.
func (s *Service) Register(ctx context.Context, c Credentials) (int64, error) {
	const op = "register"

	username, err := c.validate(op)
	if err != nil {
		return 0, err
	}
	hash, err := s.hasher.Hash(c.Password)
	if err != nil {
		return 0, StorageError(op, err)
	}
	return s.store.CreateUser(ctx, username, hash)
}

// Login returns the id of the user matching c. Unknown users and wrong
// passwords both yield KindUnauthorized.
func (s *Service) Login(ctx context.Context, c Credentials) (int64, error) {
	const op = "login"

	username, err := c.validate(op)
	if err != nil {
		return 0, err
	}

	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return 0, &Error{Kind: KindUnauthorized, Op: op, Message: "invalid username or password"}
		}
		return 0, err
	}
	if !s.hasher.Verify(u.PasswordHash, c.Password) {
		return 0, &Error{Kind: KindUnauthorized, Op: op, Message: "invalid username or password"}
	}
	return u.ID, nil
}
