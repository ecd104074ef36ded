package queue

import (
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMinutesPerPatient is the wait added for every patient already
// waiting when someone checks in.
const DefaultMinutesPerPatient = 15

var (
	ErrEntryNotFound     = errors.New("queue entry not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// legalTransitions is enforced only when the manager runs in strict mode.
var legalTransitions = map[Status]map[Status]bool{
	StatusWaiting: {
		StatusWithDoctor: true,
		StatusCancelled:  true,
		StatusCompleted:  true,
	},
	StatusWithDoctor: {
		StatusCompleted: true,
	},
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the wall clock used for check-in and update times.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithStrictTransitions rejects status changes outside the declared
// waiting -> with-doctor -> completed flow with ErrInvalidTransition.
func WithStrictTransitions() Option {
	return func(m *Manager) { m.strict = true }
}

// WithMinutesPerPatient changes the per-patient wait estimate.
func WithMinutesPerPatient(minutes int) Option {
	return func(m *Manager) {
		if minutes > 0 {
			m.minutesPerPatient = minutes
		}
	}
}

// WithLogger attaches a logger for queue lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// Manager owns the walk-in queue. Entries are kept in check-in order; the
// priority ordering is computed on every List call. All methods are safe
// for concurrent use.
type Manager struct {
	mu                sync.RWMutex
	entries           []Entry
	nextID            int
	nextQueueNumber   int
	minutesPerPatient int
	strict            bool
	now               func() time.Time
	logger            zerolog.Logger
}

// NewManager creates an empty queue. Ids and queue numbers start at 1.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		nextID:            1,
		nextQueueNumber:   1,
		minutesPerPatient: DefaultMinutesPerPatient,
		now:               time.Now,
		logger:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add checks a patient in. The wait estimate counts the patients waiting
// before this one and is not recalculated later.
func (m *Manager) Add(patientName string, patientID *int, priority Priority) Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	e := Entry{
		ID:            m.nextID,
		QueueNumber:   m.nextQueueNumber,
		PatientName:   patientName,
		PatientID:     cloneInt(patientID),
		Priority:      priority,
		EstimatedWait: m.countLocked(StatusWaiting) * m.minutesPerPatient,
		Status:        StatusWaiting,
		CheckInTime:   now,
		UpdatedAt:     now,
	}
	m.appendLocked(e)

	m.logger.Debug().
		Int("id", e.ID).
		Int("queue_number", e.QueueNumber).
		Str("priority", string(e.Priority)).
		Int("estimated_wait", e.EstimatedWait).
		Msg("patient checked in")

	return e.clone()
}

// Restore appends an entry recorded elsewhere, keeping its wait estimate
// and status. It gets the next id and queue number. An empty status or
// priority falls back to waiting and normal.
func (m *Manager) Restore(e Entry) Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	e.ID = m.nextID
	e.QueueNumber = m.nextQueueNumber
	e.PatientID = cloneInt(e.PatientID)
	e.DoctorID = cloneInt(e.DoctorID)
	if e.Status == "" {
		e.Status = StatusWaiting
	}
	if e.Priority == "" {
		e.Priority = PriorityNormal
	}
	if e.CheckInTime.IsZero() {
		e.CheckInTime = now
	}
	e.UpdatedAt = now
	m.appendLocked(e)
	return e.clone()
}

func (m *Manager) appendLocked(e Entry) {
	m.nextID++
	m.nextQueueNumber++
	m.entries = append(m.entries, e)
}

// List returns every entry ordered by priority, then by queue number.
// The stored order is left untouched.
func (m *Manager) List() []Entry {
	m.mu.RLock()
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.clone()
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.rank(), out[j].Priority.rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].QueueNumber < out[j].QueueNumber
	})
	return out
}

// FindByStatus returns entries with the given status in check-in order.
func (m *Manager) FindByStatus(status Status) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Entry{}
	for _, e := range m.entries {
		if e.Status == status {
			out = append(out, e.clone())
		}
	}
	return out
}

// Get returns a single entry.
func (m *Manager) Get(id int) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexLocked(id)
	if i < 0 {
		return Entry{}, ErrEntryNotFound
	}
	return m.entries[i].clone(), nil
}

// UpdateStatus moves an entry to a new status. A nil doctorID keeps the
// doctor already assigned.
func (m *Manager) UpdateStatus(id int, status Status, doctorID *int) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return Entry{}, ErrEntryNotFound
	}

	e := &m.entries[i]
	if m.strict && !legalTransitions[e.Status][status] {
		return Entry{}, ErrInvalidTransition
	}

	e.Status = status
	if doctorID != nil {
		e.DoctorID = cloneInt(doctorID)
	}
	e.UpdatedAt = m.now().UTC()
	return e.clone(), nil
}

// Remove deletes an entry. Remaining queue numbers are not changed.
func (m *Manager) Remove(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return ErrEntryNotFound
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)

	m.logger.Debug().Int("id", id).Msg("queue entry removed")
	return nil
}

// Stats summarises the queue. AvgWaitTime averages the check-in estimate of
// every entry regardless of status.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{Total: len(m.entries)}
	sum := 0
	for _, e := range m.entries {
		switch e.Status {
		case StatusWaiting:
			s.Waiting++
		case StatusWithDoctor:
			s.WithDoctor++
		case StatusCompleted:
			s.Completed++
		}
		sum += e.EstimatedWait
	}
	if s.Total > 0 {
		s.AvgWaitTime = int(math.Round(float64(sum) / float64(s.Total)))
	}
	return s
}

func (m *Manager) countLocked(status Status) int {
	n := 0
	for _, e := range m.entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

func (m *Manager) indexLocked(id int) int {
	for i := range m.entries {
		if m.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// clone returns a copy that shares no pointers with e.
func (e Entry) clone() Entry {
	e.PatientID = cloneInt(e.PatientID)
	e.DoctorID = cloneInt(e.DoctorID)
	return e
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
