package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iMallco/iMall/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserStore is the credential store used by the auth service.
//
// Create must be an atomic insert-if-absent on the case-folded email: two
// concurrent calls with the same address never both succeed.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)
}

// normalizeEmail is the uniqueness key for an address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newUserID returns a time-ordered identifier with a random suffix.
func newUserID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
