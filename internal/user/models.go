package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	dErrors "minetrack/pkg/domain-errors"
)

// Role gates access to administrative routes.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleUser, RoleAdmin:
		return r, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown role %q", s))
}

// User is an account that can submit mines; admins additionally verify them.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Store is the persistence boundary for user accounts. Implementations return
// sentinel errors; the service translates them.
type Store interface {
	// Insert persists a new user and assigns its identifier. A duplicate
	// email fails with sentinel.ErrConflict.
	Insert(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	UpdateRole(ctx context.Context, id string, role Role, updatedAt time.Time) (*User, error)
	// UpdateProfile changes the display name and email. An email already held
	// by another account fails with sentinel.ErrConflict.
	UpdateProfile(ctx context.Context, id, name, email string, updatedAt time.Time) (*User, error)
}
