package domain

import (
	"encoding/json"
	"testing"
)

func TestTurfRefUnmarshalBothShapes(t *testing.T) {
	var fromID TurfRef
	if err := json.Unmarshal([]byte(`"66f1a2b3c4"`), &fromID); err != nil {
		t.Fatalf("unmarshal id string: %v", err)
	}
	if fromID.ID != "66f1a2b3c4" {
		t.Errorf("ID = %q, want 66f1a2b3c4", fromID.ID)
	}

	var fromDoc TurfRef
	if err := json.Unmarshal([]byte(`{"_id":"66f1a2b3c4","name":"City Arena","slug":"city-arena"}`), &fromDoc); err != nil {
		t.Fatalf("unmarshal populated doc: %v", err)
	}
	if fromDoc.ID != "66f1a2b3c4" || fromDoc.Name != "City Arena" || fromDoc.Slug != "city-arena" {
		t.Errorf("unexpected TurfRef: %+v", fromDoc)
	}
}

func TestBookingUnmarshal(t *testing.T) {
	raw := `{
		"_id": "b1",
		"user": "u1",
		"turf": {"_id": "t1", "name": "City Arena"},
		"date": "2026-09-01",
		"startTime": "10:00",
		"endTime": "11:00",
		"appliedPricePerSlot": 500,
		"totalPrice": 500,
		"status": "pending",
		"paymentStatus": "unpaid"
	}`
	var b Booking
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal booking: %v", err)
	}
	if b.User.ID != "u1" {
		t.Errorf("User.ID = %q, want u1", b.User.ID)
	}
	if b.Turf.Name != "City Arena" {
		t.Errorf("Turf.Name = %q, want City Arena", b.Turf.Name)
	}
	if b.TotalPrice != 500 {
		t.Errorf("TotalPrice = %v, want 500", b.TotalPrice)
	}
}

func TestAvailabilityOpen(t *testing.T) {
	a := TurfAvailability{
		Date: "2026-09-01",
		Slots: []AvailabilitySlot{
			{StartTime: "09:00", EndTime: "10:00", Available: true, PricePerSlot: 400},
			{StartTime: "10:00", EndTime: "11:00", Available: false, PricePerSlot: 400},
			{StartTime: "11:00", EndTime: "12:00", Available: true, PricePerSlot: 500},
		},
	}
	open := a.Open()
	if len(open) != 2 {
		t.Fatalf("len(Open()) = %d, want 2", len(open))
	}
	if open[0].StartTime != "09:00" || open[1].StartTime != "11:00" {
		t.Errorf("Open() order wrong: %+v", open)
	}
}

func TestUserPatchApply(t *testing.T) {
	u := User{ID: "u1", Name: "Old Name", Email: "old@b.com", Phone: "01712345678"}
	name := "New Name"
	UserPatch{Name: &name}.Apply(&u)
	if u.Name != "New Name" {
		t.Errorf("Name = %q, want New Name", u.Name)
	}
	if u.Email != "old@b.com" || u.Phone != "01712345678" {
		t.Errorf("untouched fields changed: %+v", u)
	}

	// nil receiver target must be a no-op
	UserPatch{Name: &name}.Apply(nil)
}
