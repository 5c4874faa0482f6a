package services

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rahel786/QuickHire-sub000/models"
	"github.com/Rahel786/QuickHire-sub000/store"
	"github.com/Rahel786/QuickHire-sub000/utils"
)

// Credentials is the credential store: user persistence plus password
// hashing. Plaintext passwords never reach the repository.
type Credentials struct {
	users UserRepository
}

func NewCredentials(users UserRepository) (*Credentials, error) {
	if users == nil {
		return nil, errors.New("user repository is required")
	}
	return &Credentials{users: users}, nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser hashes password and stores u. A taken email yields a
// DUPLICATE_EMAIL error.
func (c *Credentials) CreateUser(ctx context.Context, u *models.User, password string) error {
	if password == "" {
		return validationError("password is required")
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Email == "" {
		return validationError("email is required")
	}
	if u.Role == "" {
		u.Role = models.RoleStudent
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return internal("HashPassword", err)
	}
	u.PasswordHash = hash

	if err := c.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return duplicateEmail(u.Email)
		}
		return internal("CreateUser", err)
	}
	return nil
}

// FindByEmail returns the user or a NOT_FOUND error.
func (c *Credentials) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := c.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("user")
		}
		return nil, internal("FindByEmail", err)
	}
	return u, nil
}

// FindByID returns the user or a NOT_FOUND error.
func (c *Credentials) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := c.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("user")
		}
		return nil, internal("FindByID", err)
	}
	return u, nil
}

// Exists reports whether a user with email is stored.
func (c *Credentials) Exists(ctx context.Context, email string) (bool, error) {
	_, err := c.users.FindByEmail(ctx, NormalizeEmail(email))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, internal("FindByEmail", err)
	}
}

// UpdateUser applies patch. A plaintext Password in the patch is hashed
// first.
func (c *Credentials) UpdateUser(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	if patch.Password != nil {
		hash, err := utils.HashPassword(*patch.Password)
		if err != nil {
			return nil, internal("HashPassword", err)
		}
		patch.PasswordHash = &hash
		patch.Password = nil
	}

	u, err := c.users.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("user")
		}
		return nil, internal("UpdateUser", err)
	}
	return u, nil
}

// VerifyPassword compares candidate against the stored hash.
func (c *Credentials) VerifyPassword(u *models.User, candidate string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return utils.CheckPassword(u.PasswordHash, candidate)
}

// RoleOf returns the stored role of the user with the given hex id.
func (c *Credentials) RoleOf(ctx context.Context, userID string) (string, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", oops.Code(CodeUnauthorized).Errorf("invalid user id")
	}
	u, err := c.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func duplicateEmail(email string) error {
	return oops.Code(CodeDuplicateEmail).With("email", email).Errorf("user with this email already exists")
}
