package otf_api

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBookingV2Status(t *testing.T) {
	tests := []struct {
		name    string
		booking BookingV2
		want    BookingStatus
	}{
		{"booked", BookingV2{}, BookingStatusBooked},
		{"checked in", BookingV2{CheckedIn: true}, BookingStatusCheckedIn},
		{"cancelled", BookingV2{Canceled: true}, BookingStatusCancelled},
		{"late cancelled", BookingV2{Canceled: true, LateCanceled: true}, BookingStatusLateCancelled},
		// A late cancel that also checked in shouldn't happen, but the more
		// specific flag wins if it does.
		{"late cancel beats checked in", BookingV2{CheckedIn: true, LateCanceled: true}, BookingStatusLateCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.booking.BookingStatus(); got != tt.want {
				t.Errorf("BookingStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingV2Decode(t *testing.T) {
	raw := `{
		"id": "bk-1",
		"member_id": "member-uuid-1",
		"service_name": "Premier",
		"checked_in": true,
		"canceled": false,
		"ratable": true,
		"person_id": "person-1",
		"class": {
			"id": "cls-1",
			"name": "Orange 60 Min 2G",
			"type": "ORANGE_60",
			"starts_at_local": "2026-09-02T10:00:00",
			"ot_base_class_uuid": "class-uuid-1",
			"coach": {"first_name": "Alex"},
			"studio": {
				"id": "studio-uuid-1",
				"name": "AnyTown TX",
				"time_zone": "America/Chicago",
				"phone": "5551230000",
				"latitude": 30.25,
				"longitude": -97.75
			}
		},
		"workout": {
			"id": "perf-1",
			"calories_burned": 512,
			"splat_points": 14
		},
		"ratings": {
			"class": {"id": "21", "description": "Double Thumbs Up", "value": 3},
			"coach": null
		},
		"updated_at": "2026-09-02T11:05:00"
	}`

	var b BookingV2
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if b.ID != "bk-1" || b.MemberUUID != "member-uuid-1" {
		t.Errorf("ids = %q/%q, want bk-1/member-uuid-1", b.ID, b.MemberUUID)
	}
	if !b.CheckedIn || b.Canceled {
		t.Errorf("flags CheckedIn=%v Canceled=%v, want true/false", b.CheckedIn, b.Canceled)
	}
	if b.Class.Name != "Orange 60 Min 2G" || b.Class.Type != ClassTypeOrange60 {
		t.Errorf("class = %q (%v), want Orange 60 Min 2G (%v)", b.Class.Name, b.Class.Type, ClassTypeOrange60)
	}
	if b.Class.Coach != "Alex" {
		t.Errorf("Coach = %q, want Alex", b.Class.Coach)
	}
	if b.Class.Studio == nil || b.Class.Studio.Name != "AnyTown TX" {
		t.Fatalf("Studio = %+v, want AnyTown TX", b.Class.Studio)
	}
	if b.StudioUUID() != "studio-uuid-1" {
		t.Errorf("StudioUUID() = %q, want studio-uuid-1", b.StudioUUID())
	}
	if b.ClassUUID() != "class-uuid-1" {
		t.Errorf("ClassUUID() = %q, want class-uuid-1", b.ClassUUID())
	}
	if b.Workout == nil || b.Workout.CaloriesBurned != 512 {
		t.Fatalf("Workout = %+v, want calories 512", b.Workout)
	}
	if b.ClassRating == nil || b.ClassRating.Value != 3 {
		t.Errorf("ClassRating = %+v, want value 3", b.ClassRating)
	}
	if b.CoachRating != nil {
		t.Errorf("CoachRating = %+v, want nil for a null rating", b.CoachRating)
	}

	wantStart := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	if !b.StartsAt().Equal(wantStart) {
		t.Errorf("StartsAt() = %v, want %v", b.StartsAt(), wantStart)
	}
	// No explicit end time in a v2 class; the type supplies the duration.
	if want := wantStart.Add(60 * time.Minute); !b.EndsAt().Equal(want) {
		t.Errorf("EndsAt() = %v, want %v", b.EndsAt(), want)
	}
}

// The same reservation seen through the legacy and v2 endpoints must agree
// on which class it is for, where, and when.
func TestBookingGenerationsAgree(t *testing.T) {
	legacyRaw := `{
		"classBookingUUId": "b1",
		"status": "Booked",
		"class": {
			"classUUId": "class-uuid-1",
			"name": "Orange 60",
			"startDateTime": "2026-09-02T10:00:00",
			"endDateTime": "2026-09-02T11:00:00",
			"studio": {"studioUUId": "studio-uuid-1"}
		}
	}`
	v2Raw := `{
		"id": "bk-1",
		"member_id": "member-uuid-1",
		"checked_in": false,
		"canceled": false,
		"updated_at": "2026-09-02T11:05:00",
		"class": {
			"id": "cls-1",
			"name": "Orange 60",
			"type": "ORANGE_60",
			"starts_at_local": "2026-09-02T10:00:00",
			"ot_base_class_uuid": "class-uuid-1",
			"studio": {"id": "studio-uuid-1"}
		}
	}`

	var legacy Booking
	if err := json.Unmarshal([]byte(legacyRaw), &legacy); err != nil {
		t.Fatalf("legacy Unmarshal() error = %v", err)
	}
	var v2 BookingV2
	if err := json.Unmarshal([]byte(v2Raw), &v2); err != nil {
		t.Fatalf("v2 Unmarshal() error = %v", err)
	}

	var a, b BookingRef = &legacy, &v2
	if a.StudioUUID() != b.StudioUUID() {
		t.Errorf("StudioUUID: legacy %q, v2 %q", a.StudioUUID(), b.StudioUUID())
	}
	if a.StudioUUID() != "studio-uuid-1" {
		t.Errorf("StudioUUID = %q, want studio-uuid-1", a.StudioUUID())
	}
	if a.ClassUUID() != b.ClassUUID() {
		t.Errorf("ClassUUID: legacy %q, v2 %q", a.ClassUUID(), b.ClassUUID())
	}
	if a.ClassUUID() != "class-uuid-1" {
		t.Errorf("ClassUUID = %q, want class-uuid-1", a.ClassUUID())
	}
	if !a.StartsAt().Equal(b.StartsAt()) {
		t.Errorf("StartsAt: legacy %v, v2 %v", a.StartsAt(), b.StartsAt())
	}
	if a.BookingStatus() != b.BookingStatus() {
		t.Errorf("BookingStatus: legacy %v, v2 %v", a.BookingStatus(), b.BookingStatus())
	}
}

func TestBookingV2DecodeRequiresCoreFields(t *testing.T) {
	raw := `{"id": "bk-1", "member_id": "member-uuid-1", "checked_in": false, "canceled": false}`

	var b BookingV2
	err := json.Unmarshal([]byte(raw), &b)
	if err == nil {
		t.Fatal("Unmarshal() error = nil, want missing-field error")
	}
}
