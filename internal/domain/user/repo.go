package user

import (
	"context"
	"errors"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalid            = errors.New("invalid user")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrCannotDeleteAdmin  = errors.New("cannot delete admin user")
)

// Repository defines the persistence interface for user accounts. Create
// and Update enforce unique usernames and emails.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int, hash string) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, p pagination.Params) ([]*User, int, error)
}
