package doctor

import (
	"fmt"
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// WorkingHours is informational. Appointment slots are not derived from it.
type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (w WorkingHours) validate() error {
	for _, v := range []string{w.Start, w.End} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("%w: working hours must be HH:MM, got %q", ErrInvalid, v)
		}
	}
	return nil
}

type Doctor struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Specialty    string       `json:"specialty"`
	Gender       Gender       `json:"gender"`
	Location     string       `json:"location"`
	Available    bool         `json:"available"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	WorkingHours WorkingHours `json:"workingHours"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Filter narrows a doctor listing. Search is a case-insensitive substring
// match on name, specialty and location; the other fields match exactly.
type Filter struct {
	Search    string
	Specialty string
	Location  string
	Available *bool
}

func (f Filter) Matches(d *Doctor) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(d.Name), q) &&
			!strings.Contains(strings.ToLower(d.Specialty), q) &&
			!strings.Contains(strings.ToLower(d.Location), q) {
			return false
		}
	}
	if f.Specialty != "" && d.Specialty != f.Specialty {
		return false
	}
	if f.Location != "" && d.Location != f.Location {
		return false
	}
	if f.Available != nil && d.Available != *f.Available {
		return false
	}
	return true
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name         *string       `json:"name"`
	Specialty    *string       `json:"specialty"`
	Gender       *Gender       `json:"gender"`
	Location     *string       `json:"location"`
	Available    *bool         `json:"available"`
	Email        *string       `json:"email"`
	Phone        *string       `json:"phone"`
	WorkingHours *WorkingHours `json:"workingHours"`
}

func (p Patch) Apply(d *Doctor) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Specialty != nil {
		d.Specialty = *p.Specialty
	}
	if p.Gender != nil {
		d.Gender = *p.Gender
	}
	if p.Location != nil {
		d.Location = *p.Location
	}
	if p.Available != nil {
		d.Available = *p.Available
	}
	if p.Email != nil {
		d.Email = *p.Email
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.WorkingHours != nil {
		d.WorkingHours = *p.WorkingHours
	}
}

func validate(d *Doctor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.TrimSpace(d.Specialty) == "" {
		return fmt.Errorf("%w: specialty is required", ErrInvalid)
	}
	if d.Gender != "" && !d.Gender.Valid() {
		return fmt.Errorf("%w: invalid gender: %s", ErrInvalid, d.Gender)
	}
	return d.WorkingHours.validate()
}
