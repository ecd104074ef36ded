package patient

import (
	"context"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	p.normalize()
	if err := validate(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return s.repo.GetByEmail(ctx, email)
}

// List returns patients in id order. A non-empty search narrows the result
// as described by Patient.Matches.
func (s *Service) List(ctx context.Context, search string, p pagination.Params) ([]*Patient, int, error) {
	return s.repo.List(ctx, search, p)
}

func (s *Service) Update(ctx context.Context, id int, patch Patch) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)
	p.normalize()
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// DisplayName returns "First Last" for a registered patient. It lets the
// walk-in queue fill in a name when only a patient id is given.
func (s *Service) DisplayName(ctx context.Context, id int) (string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return p.DisplayName(), nil
}
