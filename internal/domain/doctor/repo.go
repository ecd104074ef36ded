package doctor

import (
	"context"
	"errors"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

var (
	ErrNotFound = errors.New("doctor not found")
	ErrInvalid  = errors.New("invalid doctor")
)

// Repository defines the persistence interface for doctors.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Doctor, int, error)
	Specialties(ctx context.Context) ([]string, error)
	Locations(ctx context.Context) ([]string, error)
}
