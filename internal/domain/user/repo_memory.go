package user

import (
	"context"
	"sync"
	"time"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

type memoryRepo struct {
	mu     sync.RWMutex
	users  []*User
	nextID int
}

func NewMemoryRepo() Repository {
	return &memoryRepo{nextID: 1}
}

func (r *memoryRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(u); err != nil {
		return err
	}
	now := time.Now().UTC()
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt, u.UpdatedAt = now, now

	stored := *u
	r.users = append(r.users, &stored)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int) (*User, error) {
	return r.find(func(u *User) bool { return u.ID == id })
}

func (r *memoryRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	return r.find(func(u *User) bool { return u.Username == username })
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	return r.find(func(u *User) bool { return u.Email == email })
}

func (r *memoryRepo) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(u.ID)
	if i < 0 {
		return ErrNotFound
	}
	if err := r.checkUnique(u); err != nil {
		return err
	}
	u.CreatedAt = r.users[i].CreatedAt
	u.PasswordHash = r.users[i].PasswordHash
	u.UpdatedAt = time.Now().UTC()
	stored := *u
	r.users[i] = &stored
	return nil
}

func (r *memoryRepo) UpdatePassword(_ context.Context, id int, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.users[i].PasswordHash = hash
	r.users[i].UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	return nil
}

func (r *memoryRepo) List(_ context.Context, p pagination.Params) ([]*User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*User, len(r.users))
	for i, u := range r.users {
		cp := *u
		out[i] = &cp
	}
	return pagination.Page(out, p), len(out), nil
}

func (r *memoryRepo) find(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// checkUnique must be called with the write lock held.
func (r *memoryRepo) checkUnique(u *User) error {
	for _, other := range r.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return ErrUsernameTaken
		}
		if other.Email == u.Email {
			return ErrEmailTaken
		}
	}
	return nil
}

func (r *memoryRepo) indexOf(id int) int {
	for i, u := range r.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
