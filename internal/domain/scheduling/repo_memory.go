package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

type memoryRepo struct {
	mu           sync.RWMutex
	appointments []*Appointment
	nextID       int
}

func NewMemoryRepo() AppointmentRepository {
	return &memoryRepo{nextID: 1}
}

func (r *memoryRepo) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slotHeld(a) {
		return ErrSlotTaken
	}
	now := time.Now().UTC()
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt, a.UpdatedAt = now, now
	r.appointments = append(r.appointments, clone(a))
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return clone(r.appointments[i]), nil
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) Update(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(a.ID)
	if i < 0 {
		return ErrNotFound
	}
	if r.slotHeld(a) {
		return ErrSlotTaken
	}
	a.CreatedAt = r.appointments[i].CreatedAt
	a.UpdatedAt = time.Now().UTC()
	r.appointments[i] = clone(a)
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.appointments = append(r.appointments[:i], r.appointments[i+1:]...)
	return nil
}

func (r *memoryRepo) List(_ context.Context, f Filter, p pagination.Params) ([]*Appointment, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Appointment
	for _, a := range r.appointments {
		if f.Matches(a) {
			matched = append(matched, clone(a))
		}
	}
	return pagination.Page(matched, p), len(matched), nil
}

// slotHeld reports whether another scheduled appointment already holds the
// slot a wants. Called with the write lock held.
func (r *memoryRepo) slotHeld(a *Appointment) bool {
	if !a.HoldsSlot() {
		return false
	}
	for _, other := range r.appointments {
		if other.ID != a.ID && other.HoldsSlot() &&
			other.DoctorID == a.DoctorID && other.Date == a.Date && other.Time == a.Time {
			return true
		}
	}
	return false
}

func (r *memoryRepo) indexOf(id int) int {
	for i, a := range r.appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func clone(a *Appointment) *Appointment {
	cp := *a
	if a.PatientID != nil {
		id := *a.PatientID
		cp.PatientID = &id
	}
	return &cp
}
