package queue

import (
	"fmt"
	"time"
)

// Priority is the triage class a walk-in patient is checked in with.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// rank orders priorities for the queue view; lower sorts first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.rank() < 4
}

// ParsePriority converts request input into a Priority. An empty string
// yields PriorityNormal.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

// Status is the lifecycle state of a queue entry.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusWithDoctor Status = "with-doctor"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusWaiting: true, StatusWithDoctor: true,
	StatusCompleted: true, StatusCancelled: true,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return validStatuses[s]
}

// ParseStatus converts request input into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status: %s", s)
	}
	return st, nil
}

// Entry is a walk-in patient's place in the queue.
type Entry struct {
	ID            int       `json:"id"`
	QueueNumber   int       `json:"queueNumber"`
	PatientName   string    `json:"patientName"`
	PatientID     *int      `json:"patientId,omitempty"`
	Priority      Priority  `json:"priority"`
	EstimatedWait int       `json:"estimatedWait"`
	Status        Status    `json:"status"`
	DoctorID      *int      `json:"doctorId,omitempty"`
	CheckInTime   time.Time `json:"checkInTime"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Stats aggregates the current queue for the front-desk dashboard.
type Stats struct {
	Total       int `json:"total"`
	Waiting     int `json:"waiting"`
	WithDoctor  int `json:"withDoctor"`
	Completed   int `json:"completed"`
	AvgWaitTime int `json:"avgWaitTime"`
}
