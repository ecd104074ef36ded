package doctor

import (
	"context"
	"errors"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if err := validate(d); err != nil {
		return err
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id int) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists reports whether a doctor with the id is on file.
func (s *Service) Exists(ctx context.Context, id int) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) ([]*Doctor, int, error) {
	return s.repo.List(ctx, f, p)
}

// Available lists every doctor currently marked available.
func (s *Service) Available(ctx context.Context) ([]*Doctor, error) {
	yes := true
	doctors, _, err := s.repo.List(ctx, Filter{Available: &yes}, pagination.Params{})
	if doctors == nil && err == nil {
		doctors = []*Doctor{}
	}
	return doctors, err
}

func (s *Service) Specialties(ctx context.Context) ([]string, error) {
	return s.repo.Specialties(ctx)
}

func (s *Service) Locations(ctx context.Context) ([]string, error) {
	return s.repo.Locations(ctx)
}

func (s *Service) Update(ctx context.Context, id int, patch Patch) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(d)
	if err := validate(d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
