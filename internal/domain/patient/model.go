package patient

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

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

type Insurance struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policyNumber"`
	GroupNumber  string `json:"groupNumber"`
}

type Patient struct {
	ID               int              `json:"id"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	DateOfBirth      string           `json:"dateOfBirth"`
	Gender           Gender           `json:"gender"`
	Address          Address          `json:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	MedicalHistory   []string         `json:"medicalHistory"`
	Allergies        []string         `json:"allergies"`
	Medications      []string         `json:"medications"`
	Insurance        Insurance        `json:"insurance"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// DisplayName is the name shown at the front desk, "First Last".
func (p *Patient) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Matches reports whether the patient matches a free-text search: a
// case-insensitive substring of first name, last name or email, or a
// substring of the phone number.
func (p *Patient) Matches(search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.FirstName), q) ||
		strings.Contains(strings.ToLower(p.LastName), q) ||
		strings.Contains(strings.ToLower(p.Email), q) ||
		strings.Contains(p.Phone, search)
}

// normalize makes list fields non-nil so they serialize as [].
func (p *Patient) normalize() {
	p.Email = strings.TrimSpace(p.Email)
	if p.MedicalHistory == nil {
		p.MedicalHistory = []string{}
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if p.Medications == nil {
		p.Medications = []string{}
	}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	FirstName        *string           `json:"firstName"`
	LastName         *string           `json:"lastName"`
	Email            *string           `json:"email"`
	Phone            *string           `json:"phone"`
	DateOfBirth      *string           `json:"dateOfBirth"`
	Gender           *Gender           `json:"gender"`
	Address          *Address          `json:"address"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
	MedicalHistory   *[]string         `json:"medicalHistory"`
	Allergies        *[]string         `json:"allergies"`
	Medications      *[]string         `json:"medications"`
	Insurance        *Insurance        `json:"insurance"`
}

func (pt Patch) Apply(p *Patient) {
	if pt.FirstName != nil {
		p.FirstName = *pt.FirstName
	}
	if pt.LastName != nil {
		p.LastName = *pt.LastName
	}
	if pt.Email != nil {
		p.Email = *pt.Email
	}
	if pt.Phone != nil {
		p.Phone = *pt.Phone
	}
	if pt.DateOfBirth != nil {
		p.DateOfBirth = *pt.DateOfBirth
	}
	if pt.Gender != nil {
		p.Gender = *pt.Gender
	}
	if pt.Address != nil {
		p.Address = *pt.Address
	}
	if pt.EmergencyContact != nil {
		p.EmergencyContact = *pt.EmergencyContact
	}
	if pt.MedicalHistory != nil {
		p.MedicalHistory = *pt.MedicalHistory
	}
	if pt.Allergies != nil {
		p.Allergies = *pt.Allergies
	}
	if pt.Medications != nil {
		p.Medications = *pt.Medications
	}
	if pt.Insurance != nil {
		p.Insurance = *pt.Insurance
	}
}

func validate(p *Patient) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("%w: firstName is required", ErrInvalid)
	}
	if strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("%w: lastName is required", ErrInvalid)
	}
	if p.Gender != "" && !p.Gender.Valid() {
		return fmt.Errorf("%w: invalid gender: %s", ErrInvalid, p.Gender)
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return fmt.Errorf("%w: invalid email: %s", ErrInvalid, p.Email)
	}
	if p.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", p.DateOfBirth); err != nil {
			return fmt.Errorf("%w: dateOfBirth must be YYYY-MM-DD", ErrInvalid)
		}
	}
	return nil
}
