// Package shifts tracks cashier work windows and attributes activity to
// business dates.
package shifts

import (
	"time"

	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
)

const (
	// morningStartHour through nightStartHour is the morning shift.
	morningStartHour = 9
	nightStartHour   = 21
)

// Moment is the shift attribution of one timestamp.
type Moment struct {
	Slot enums.ShiftSlot
	// BusinessDate is midnight of the operational day. Activity between
	// midnight and 09:00 belongs to the previous day's night shift.
	BusinessDate time.Time
}

// ClassifyMoment applies the fixed clock rule: [9,21) is morning, [21,24) is
// night, and [0,9) is the tail of the previous day's night shift.
func ClassifyMoment(t time.Time) Moment {
	slot := enums.ShiftSlotNight
	if t.Hour() >= morningStartHour && t.Hour() < nightStartHour {
		slot = enums.ShiftSlotMorning
	}

	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if t.Hour() < morningStartHour {
		date = date.AddDate(0, 0, -1)
	}
	return Moment{Slot: slot, BusinessDate: date}
}
