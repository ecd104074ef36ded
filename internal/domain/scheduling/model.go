package scheduling

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

var validStatuses = map[Status]bool{
	StatusScheduled: true, StatusCompleted: true,
	StatusCancelled: true, StatusRescheduled: true,
}

func (s Status) Valid() bool {
	return validStatuses[s]
}

type Appointment struct {
	ID          int       `json:"id"`
	PatientName string    `json:"patientName"`
	PatientID   *int      `json:"patientId,omitempty"`
	DoctorID    int       `json:"doctorId"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HoldsSlot reports whether the appointment blocks its doctor/date/time.
// Only scheduled appointments do.
func (a *Appointment) HoldsSlot() bool {
	return a.Status == StatusScheduled
}

// Filter narrows an appointment listing. Zero fields match everything.
type Filter struct {
	DoctorID *int
	Date     string
	Status   Status
}

func (f Filter) Matches(a *Appointment) bool {
	if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
		return false
	}
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	PatientName *string `json:"patientName"`
	PatientID   *int    `json:"patientId"`
	DoctorID    *int    `json:"doctorId"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Status      *Status `json:"status"`
	Notes       *string `json:"notes"`
}

func (p Patch) Apply(a *Appointment) {
	if p.PatientName != nil {
		a.PatientName = *p.PatientName
	}
	if p.PatientID != nil {
		id := *p.PatientID
		a.PatientID = &id
	}
	if p.DoctorID != nil {
		a.DoctorID = *p.DoctorID
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Time != nil {
		a.Time = *p.Time
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is an HH:MM clock time.
func ValidTime(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

func validate(a *Appointment) error {
	switch {
	case strings.TrimSpace(a.PatientName) == "":
		return fmt.Errorf("%w: patientName is required", ErrInvalid)
	case a.DoctorID <= 0:
		return fmt.Errorf("%w: doctorId is required", ErrInvalid)
	case !ValidDate(a.Date):
		return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalid, a.Date)
	case !ValidTime(a.Time):
		return fmt.Errorf("%w: time must be HH:MM, got %q", ErrInvalid, a.Time)
	case !a.Status.Valid():
		return fmt.Errorf("%w: invalid status: %s", ErrInvalid, a.Status)
	}
	return nil
}
