package patient

import (
	"context"
	"errors"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

var (
	ErrNotFound   = errors.New("patient not found")
	ErrInvalid    = errors.New("invalid patient")
	ErrEmailTaken = errors.New("patient email already registered")
)

// Repository defines the persistence interface for patients. Create and
// Update return ErrEmailTaken when a non-empty email is already on file.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, search string, p pagination.Params) ([]*Patient, int, error)
}
