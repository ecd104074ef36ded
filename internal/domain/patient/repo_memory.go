package patient

import (
	"context"
	"sync"
	"time"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

type memoryRepo struct {
	mu       sync.RWMutex
	patients []*Patient
	nextID   int
}

func NewMemoryRepo() Repository {
	return &memoryRepo{nextID: 1}
}

func (r *memoryRepo) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailInUse(p.Email, 0) {
		return ErrEmailTaken
	}
	now := time.Now().UTC()
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt, p.UpdatedAt = now, now
	r.patients = append(r.patients, clone(p))
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return clone(r.patients[i]), nil
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if email == "" {
		return nil, ErrNotFound
	}
	for _, p := range r.patients {
		if p.Email == email {
			return clone(p), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(p.ID)
	if i < 0 {
		return ErrNotFound
	}
	if r.emailInUse(p.Email, p.ID) {
		return ErrEmailTaken
	}
	p.CreatedAt = r.patients[i].CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.patients[i] = clone(p)
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.patients = append(r.patients[:i], r.patients[i+1:]...)
	return nil
}

func (r *memoryRepo) List(_ context.Context, search string, pg pagination.Params) ([]*Patient, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Patient
	for _, p := range r.patients {
		if p.Matches(search) {
			matched = append(matched, clone(p))
		}
	}
	return pagination.Page(matched, pg), len(matched), nil
}

func (r *memoryRepo) emailInUse(email string, exceptID int) bool {
	if email == "" {
		return false
	}
	for _, p := range r.patients {
		if p.Email == email && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *memoryRepo) indexOf(id int) int {
	for i, p := range r.patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clone(p *Patient) *Patient {
	cp := *p
	cp.MedicalHistory = append([]string{}, p.MedicalHistory...)
	cp.Allergies = append([]string{}, p.Allergies...)
	cp.Medications = append([]string{}, p.Medications...)
	return &cp
}
