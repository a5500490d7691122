package domain

import "time"

// DayType buckets for pricing rules. The API prices weekend slots
// (Friday-Saturday) differently from weekday ones.
const (
	DayTypeSunThu  = "sunday-thursday"
	DayTypeFriSat  = "friday-saturday"
	DayTypeAllDays = "all-days"
)

// Location is a turf's address.
type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
}

// OperatingHours bound the bookable window of a turf, "HH:MM" 24h.
type OperatingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PriceSlot is a time window with a fixed price inside a pricing rule.
type PriceSlot struct {
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	PricePerSlot float64 `json:"pricePerSlot"`
}

// PricingRule maps a day-type bucket to its priced time windows.
type PricingRule struct {
	DayType   string      `json:"dayType"`
	TimeSlots []PriceSlot `json:"timeSlots"`
}

// Turf represents a bookable sports field.
type Turf struct {
	ID                  string         `json:"_id"`
	Name                string         `json:"name"`
	Slug                string         `json:"slug"`
	Location            Location       `json:"location"`
	Description         string         `json:"description,omitempty"`
	Images              []string       `json:"images,omitempty"`
	Amenities           []string       `json:"amenities,omitempty"`
	OperatingHours      OperatingHours `json:"operatingHours"`
	DefaultPricePerSlot float64        `json:"defaultPricePerSlot"`
	PricingRules        []PricingRule  `json:"pricingRules,omitempty"`
	Active              bool           `json:"isActive"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}
