package booking

import (
	"fmt"
	"time"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

// DateLayout is the wire and storage format of a scheduled date.
const DateLayout = "2006-01-02"

// TimeSlot is one of the hourly service windows.
type TimeSlot string

var timeSlots = []TimeSlot{
	"08:00", "09:00", "10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00", "16:00", "17:00",
}

// TimeSlots returns the bookable slots in order.
func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// IsValid returns true if the slot is one of the fixed hourly windows.
func (t TimeSlot) IsValid() bool {
	for _, s := range timeSlots {
		if s == t {
			return true
		}
	}
	return false
}

// ParseTimeSlot validates a time slot string.
func ParseTimeSlot(s string) (TimeSlot, error) {
	slot := TimeSlot(s)
	if !slot.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid time slot: %s", s))
	}
	return slot, nil
}

// ParseScheduledDate parses a YYYY-MM-DD date as midnight UTC.
func ParseScheduledDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(fmt.Sprintf("invalid scheduled date: %s", s))
	}
	return d.UTC(), nil
}
