package scheduling

import (
	"context"
	"fmt"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

// DoctorDirectory confirms that a doctor id refers to a known doctor.
type DoctorDirectory interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service struct {
	appointments AppointmentRepository
	doctors      DoctorDirectory
	slots        *SlotCalculator
}

// NewService builds the appointment service. doctors may be nil, in which
// case doctor ids are not checked.
func NewService(appointments AppointmentRepository, doctors DoctorDirectory) *Service {
	return &Service{
		appointments: appointments,
		doctors:      doctors,
		slots:        NewSlotCalculator(appointments),
	}
}

// Create books a new appointment. The status is always scheduled.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	a.Status = StatusScheduled
	if err := validate(a); err != nil {
		return err
	}
	if err := s.checkDoctor(ctx, a.DoctorID); err != nil {
		return err
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id int) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, f, p)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID int, p pagination.Params) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, Filter{DoctorID: &doctorID}, p)
}

func (s *Service) ListByDate(ctx context.Context, date string, p pagination.Params) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, Filter{Date: date}, p)
}

// Update applies a partial patch. Any status may be set here; the
// lifecycle shortcuts below are the guarded paths.
func (s *Service) Update(ctx context.Context, id int, patch Patch) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prevDoctor := a.DoctorID
	patch.Apply(a)
	if err := validate(a); err != nil {
		return nil, err
	}
	if a.DoctorID != prevDoctor {
		if err := s.checkDoctor(ctx, a.DoctorID); err != nil {
			return nil, err
		}
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Reschedule moves a scheduled appointment to a new date and time and marks
// it rescheduled.
func (s *Service) Reschedule(ctx context.Context, id int, date, at string) (*Appointment, error) {
	if !ValidDate(date) {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalid, date)
	}
	if !ValidTime(at) {
		return nil, fmt.Errorf("%w: time must be HH:MM, got %q", ErrInvalid, at)
	}
	return s.transition(ctx, id, func(a *Appointment) {
		a.Date = date
		a.Time = at
		a.Status = StatusRescheduled
	})
}

func (s *Service) Cancel(ctx context.Context, id int) (*Appointment, error) {
	return s.transition(ctx, id, func(a *Appointment) { a.Status = StatusCancelled })
}

func (s *Service) Complete(ctx context.Context, id int) (*Appointment, error) {
	return s.transition(ctx, id, func(a *Appointment) { a.Status = StatusCompleted })
}

func (s *Service) transition(ctx context.Context, id int, change func(*Appointment)) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusScheduled {
		return nil, fmt.Errorf("%w: status is %s", ErrNotScheduled, a.Status)
	}
	change(a)
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.appointments.Delete(ctx, id)
}

// AvailableSlots lists the free slot labels for a doctor on a date.
func (s *Service) AvailableSlots(ctx context.Context, doctorID int, date string) ([]string, error) {
	return s.slots.AvailableSlots(ctx, doctorID, date)
}

func (s *Service) checkDoctor(ctx context.Context, id int) error {
	if s.doctors == nil {
		return nil
	}
	ok, err := s.doctors.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("look up doctor %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownDoctor, id)
	}
	return nil
}
