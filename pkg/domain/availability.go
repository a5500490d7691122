package domain

// AvailabilitySlot is one bookable hour on a given date, with the
// price the active pricing rule assigns to it.
type AvailabilitySlot struct {
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	Available    bool    `json:"isAvailable"`
	PricePerSlot float64 `json:"pricePerSlot"`
	DayTypeLabel string  `json:"dayTypeLabel,omitempty"` // "FRI-SAT" or "SUN-THU"
}

// TurfAvailability is the slot grid for one (turf, date) pair.
type TurfAvailability struct {
	Date    string             `json:"date"`
	DayType string             `json:"dayType"`
	Slots   []AvailabilitySlot `json:"slots"`
}

// Open returns the subset of slots that can still be booked,
// preserving order.
func (a TurfAvailability) Open() []AvailabilitySlot {
	var open []AvailabilitySlot
	for _, s := range a.Slots {
		if s.Available {
			open = append(open, s)
		}
	}
	return open
}
