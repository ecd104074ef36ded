package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/frontdesk/frontdesk/pkg/pagination"
)

const (
	dayStart     = 9 * time.Hour
	dayEnd       = 17 * time.Hour
	slotInterval = 30 * time.Minute
)

// slotTemplate is the bookable day, 09:00 to 17:00 inclusive in half-hour
// steps. Every doctor gets the same template.
var slotTemplate = buildTemplate(dayStart, dayEnd, slotInterval)

func buildTemplate(start, end, step time.Duration) []string {
	var out []string
	for d := start; d <= end; d += step {
		out = append(out, fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60))
	}
	return out
}

// SlotTemplate returns a copy of the daily slot labels in chronological
// order.
func SlotTemplate() []string {
	return append([]string(nil), slotTemplate...)
}

// SlotCalculator works out which template slots are still free.
type SlotCalculator struct {
	appointments AppointmentRepository
}

func NewSlotCalculator(appointments AppointmentRepository) *SlotCalculator {
	return &SlotCalculator{appointments: appointments}
}

// AvailableSlots returns the template minus the times held by scheduled
// appointments of doctorID on date. Appointments in any other status leave
// their slot free. The doctor's working hours are not consulted.
func (c *SlotCalculator) AvailableSlots(ctx context.Context, doctorID int, date string) ([]string, error) {
	booked, _, err := c.appointments.List(ctx, Filter{
		DoctorID: &doctorID,
		Date:     date,
		Status:   StatusScheduled,
	}, pagination.Params{})
	if err != nil {
		return nil, fmt.Errorf("list booked appointments: %w", err)
	}

	taken := make(map[string]bool, len(booked))
	for _, a := range booked {
		taken[a.Time] = true
	}

	free := make([]string, 0, len(slotTemplate))
	for _, slot := range slotTemplate {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}
