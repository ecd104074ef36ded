package scheduling

import (
	"context"
	"errors"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrInvalid       = errors.New("invalid appointment")
	ErrSlotTaken     = errors.New("time slot already booked")
	ErrNotScheduled  = errors.New("appointment is not scheduled")
	ErrUnknownDoctor = errors.New("unknown doctor")
)

// AppointmentRepository defines the persistence interface for appointments.
// Create and Update return ErrSlotTaken when a second scheduled appointment
// would hold the same doctor, date and time.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, f Filter, p pagination.Params) ([]*Appointment, int, error)
}
