package enums

// ShiftSlot is the fixed day window a session belongs to.
type ShiftSlot string

const (
	// ShiftSlotMorning covers 09:00 to 21:00.
	ShiftSlotMorning ShiftSlot = "morning"
	// ShiftSlotNight covers 21:00 through 09:00 of the next calendar day.
	ShiftSlotNight ShiftSlot = "night"
)

// IsValid reports whether the value is a known ShiftSlot.
func (s ShiftSlot) IsValid() bool {
	return s == ShiftSlotMorning || s == ShiftSlotNight
}

// String implements fmt.Stringer.
func (s ShiftSlot) String() string {
	return string(s)
}
