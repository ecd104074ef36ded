package doctor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

type memoryRepo struct {
	mu      sync.RWMutex
	doctors []*Doctor
	nextID  int
}

// NewMemoryRepo returns a Repository kept in process memory. Ids start at 1
// and are never reused.
func NewMemoryRepo() Repository {
	return &memoryRepo{nextID: 1}
}

func (r *memoryRepo) Create(_ context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	d.ID = r.nextID
	r.nextID++
	d.CreatedAt, d.UpdatedAt = now, now

	stored := *d
	r.doctors = append(r.doctors, &stored)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		d := *r.doctors[i]
		return &d, nil
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) Update(_ context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(d.ID)
	if i < 0 {
		return ErrNotFound
	}
	d.CreatedAt = r.doctors[i].CreatedAt
	d.UpdatedAt = time.Now().UTC()
	stored := *d
	r.doctors[i] = &stored
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.doctors = append(r.doctors[:i], r.doctors[i+1:]...)
	return nil
}

func (r *memoryRepo) List(_ context.Context, f Filter, p pagination.Params) ([]*Doctor, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Doctor
	for _, d := range r.doctors {
		if f.Matches(d) {
			cp := *d
			matched = append(matched, &cp)
		}
	}
	return pagination.Page(matched, p), len(matched), nil
}

func (r *memoryRepo) Specialties(_ context.Context) ([]string, error) {
	return r.distinct(func(d *Doctor) string { return d.Specialty }), nil
}

func (r *memoryRepo) Locations(_ context.Context) ([]string, error) {
	return r.distinct(func(d *Doctor) string { return d.Location }), nil
}

func (r *memoryRepo) distinct(field func(*Doctor) string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	out := []string{}
	for _, d := range r.doctors {
		v := field(d)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (r *memoryRepo) indexOf(id int) int {
	for i, d := range r.doctors {
		if d.ID == id {
			return i
		}
	}
	return -1
}
