// Package sandbox loads the demo data set used for local development and
// UI demos: an admin account, a few doctors, a patient, two appointments
// and a short walk-in queue.
package sandbox

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/frontdesk/frontdesk/internal/domain/doctor"
	"github.com/frontdesk/frontdesk/internal/domain/patient"
	"github.com/frontdesk/frontdesk/internal/domain/queue"
	"github.com/frontdesk/frontdesk/internal/domain/scheduling"
	"github.com/frontdesk/frontdesk/internal/domain/user"
	"github.com/frontdesk/frontdesk/internal/platform/auth"
	"github.com/frontdesk/frontdesk/pkg/pagination"
)

const (
	DemoAdminUsername = "admin"
	DemoAdminPassword = "admin123"
)

// SeedResult counts what a seed run created. Stores that already held data
// are left alone and count as zero.
type SeedResult struct {
	Users        int `json:"users"`
	Doctors      int `json:"doctors"`
	Patients     int `json:"patients"`
	Appointments int `json:"appointments"`
	QueueEntries int `json:"queueEntries"`
}

// Seeder writes the demo data set through the domain services so the
// usual validation applies.
type Seeder struct {
	users        *user.Service
	doctors      *doctor.Service
	patients     *patient.Service
	appointments *scheduling.Service
	queue        *queue.Manager
	logger       zerolog.Logger

	mu sync.Mutex
}

func NewSeeder(users *user.Service, doctors *doctor.Service, patients *patient.Service,
	appointments *scheduling.Service, q *queue.Manager, logger zerolog.Logger) *Seeder {
	return &Seeder{
		users:        users,
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
		queue:        q,
		logger:       logger.With().Str("component", "sandbox").Logger(),
	}
}

var demoDoctors = []doctor.Doctor{
	{
		Name: "Dr. Smith", Specialty: "General Medicine", Gender: doctor.GenderMale,
		Location: "Floor 1, Room 101", Available: true,
		Email: "dr.smith@clinic.com", Phone: "+1-555-0101",
		WorkingHours: doctor.WorkingHours{Start: "09:00", End: "17:00"},
	},
	{
		Name: "Dr. Johnson", Specialty: "Cardiology", Gender: doctor.GenderFemale,
		Location: "Floor 2, Room 201", Available: true,
		Email: "dr.johnson@clinic.com", Phone: "+1-555-0102",
		WorkingHours: doctor.WorkingHours{Start: "08:00", End: "16:00"},
	},
	{
		Name: "Dr. Williams", Specialty: "Pediatrics", Gender: doctor.GenderFemale,
		Location: "Floor 1, Room 103", Available: false,
		Email: "dr.williams@clinic.com", Phone: "+1-555-0103",
		WorkingHours: doctor.WorkingHours{Start: "10:00", End: "18:00"},
	},
}

func demoPatient() *patient.Patient {
	return &patient.Patient{
		FirstName:   "John",
		LastName:    "Doe",
		Email:       "john.doe@email.com",
		Phone:       "+1-555-0123",
		DateOfBirth: "1985-03-15",
		Gender:      patient.GenderMale,
		Address: patient.Address{
			Street: "123 Main St", City: "New York", State: "NY", ZipCode: "10001",
		},
		EmergencyContact: patient.EmergencyContact{
			Name: "Jane Doe", Relationship: "Spouse", Phone: "+1-555-0124",
		},
		MedicalHistory: []string{"Hypertension", "Diabetes Type 2"},
		Allergies:      []string{"Penicillin", "Shellfish"},
		Medications:    []string{"Metformin", "Lisinopril"},
		Insurance: patient.Insurance{
			Provider: "Blue Cross Blue Shield", PolicyNumber: "BC123456789", GroupNumber: "GRP001",
		},
	}
}

func intPtr(v int) *int { return &v }

var demoQueue = []queue.Entry{
	{PatientName: "Alice Johnson", PatientID: intPtr(1), Priority: queue.PriorityHigh, EstimatedWait: 15},
	{PatientName: "Bob Wilson", PatientID: intPtr(2), Priority: queue.PriorityNormal, EstimatedWait: 30},
	{PatientName: "Carol Davis", PatientID: intPtr(3), Priority: queue.PriorityLow, EstimatedWait: 45},
}

// Seed loads the demo data into every empty store. Running it again is a
// no-op.
func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &SeedResult{}
	if err := s.seedUsers(ctx, res); err != nil {
		return res, err
	}
	doctorIDs, err := s.seedDoctors(ctx, res)
	if err != nil {
		return res, err
	}
	patientID, err := s.seedPatients(ctx, res)
	if err != nil {
		return res, err
	}
	if err := s.seedAppointments(ctx, res, doctorIDs, patientID); err != nil {
		return res, err
	}
	s.seedQueue(res)

	s.logger.Info().
		Int("users", res.Users).
		Int("doctors", res.Doctors).
		Int("patients", res.Patients).
		Int("appointments", res.Appointments).
		Int("queue_entries", res.QueueEntries).
		Msg("demo data seeded")
	return res, nil
}

var first = pagination.Params{Limit: 1}

func (s *Seeder) seedUsers(ctx context.Context, res *SeedResult) error {
	_, total, err := s.users.List(ctx, first)
	if err != nil || total > 0 {
		return err
	}
	_, err = s.users.Create(ctx, user.CreateInput{
		Username:  DemoAdminUsername,
		Email:     "admin@clinic.com",
		Password:  DemoAdminPassword,
		FirstName: "Admin",
		LastName:  "User",
		Role:      auth.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	res.Users++
	return nil
}

func (s *Seeder) seedDoctors(ctx context.Context, res *SeedResult) ([]int, error) {
	existing, total, err := s.doctors.List(ctx, doctor.Filter{}, pagination.Params{Limit: len(demoDoctors)})
	if err != nil {
		return nil, err
	}
	if total > 0 {
		ids := make([]int, len(existing))
		for i, d := range existing {
			ids[i] = d.ID
		}
		return ids, nil
	}

	ids := make([]int, 0, len(demoDoctors))
	for _, tmpl := range demoDoctors {
		d := tmpl
		if err := s.doctors.Create(ctx, &d); err != nil {
			return nil, fmt.Errorf("seed doctor %s: %w", d.Name, err)
		}
		ids = append(ids, d.ID)
		res.Doctors++
	}
	return ids, nil
}

func (s *Seeder) seedPatients(ctx context.Context, res *SeedResult) (*int, error) {
	existing, total, err := s.patients.List(ctx, "", first)
	if err != nil {
		return nil, err
	}
	if total > 0 {
		return &existing[0].ID, nil
	}
	p := demoPatient()
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("seed patient: %w", err)
	}
	res.Patients++
	return &p.ID, nil
}

func (s *Seeder) seedAppointments(ctx context.Context, res *SeedResult, doctorIDs []int, patientID *int) error {
	if len(doctorIDs) < 2 {
		return nil
	}
	_, total, err := s.appointments.List(ctx, scheduling.Filter{}, first)
	if err != nil || total > 0 {
		return err
	}

	checkup := &scheduling.Appointment{
		PatientName: "John Doe", PatientID: patientID, DoctorID: doctorIDs[0],
		Date: "2024-01-15", Time: "10:00", Notes: "Regular checkup",
	}
	consult := &scheduling.Appointment{
		PatientName: "Jane Smith", PatientID: intPtr(2), DoctorID: doctorIDs[1],
		Date: "2024-01-15", Time: "11:00", Notes: "Cardiology consultation",
	}
	for _, a := range []*scheduling.Appointment{checkup, consult} {
		if err := s.appointments.Create(ctx, a); err != nil {
			return fmt.Errorf("seed appointment %s %s: %w", a.Date, a.Time, err)
		}
		res.Appointments++
	}
	if _, err := s.appointments.Complete(ctx, consult.ID); err != nil {
		return fmt.Errorf("complete seeded appointment: %w", err)
	}
	return nil
}

func (s *Seeder) seedQueue(res *SeedResult) {
	if s.queue.Stats().Total > 0 {
		return
	}
	for _, e := range demoQueue {
		s.queue.Restore(e)
		res.QueueEntries++
	}
}

// Handler exposes a manual reseed for admins.
type Handler struct {
	seeder *Seeder
}

func NewHandler(seeder *Seeder) *Handler {
	return &Handler{seeder: seeder}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/sandbox", auth.RequireRole(auth.RoleAdmin))
	g.POST("/seed", h.Seed)
}

func (h *Handler) Seed(c echo.Context) error {
	res, err := h.seeder.Seed(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
