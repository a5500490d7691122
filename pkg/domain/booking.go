package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Booking lifecycle states, owned by the API.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Payment states attached to a booking.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// TurfRef is a turf reference inside a booking. The API returns either
// a bare object ID or the populated turf document depending on the
// endpoint, so it unmarshals from both.
type TurfRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

func (r *TurfRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain TurfRef
	return json.Unmarshal(data, (*plain)(r))
}

// UserRef is a user reference inside a booking, same dual encoding
// as TurfRef.
type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain UserRef
	return json.Unmarshal(data, (*plain)(r))
}

// Booking is a reserved one-hour slot on a turf. Read-only on the
// client; all transitions happen server-side.
type Booking struct {
	ID            string    `json:"_id"`
	User          UserRef   `json:"user"`
	Turf          TurfRef   `json:"turf"`
	Date          string    `json:"date"` // "2006-01-02"
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	PricePerSlot  float64   `json:"appliedPricePerSlot"`
	TotalPrice    float64   `json:"totalPrice"`
	DayType       string    `json:"dayType,omitempty"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NextHour returns the slot end time one hour after start.
// Slots are a fixed one-hour grain; the end is derived, never chosen.
func NextHour(start string) (string, error) {
	t, err := time.Parse("15:04", start)
	if err != nil {
		return "", fmt.Errorf("parse start time %q: %w", start, err)
	}
	return t.Add(time.Hour).Format("15:04"), nil
}
