package otf_api

import (
	"context"
	"time"
)

// BookingV2Studio is the thin studio block on a v2 booking's class. It is a
// different shape from StudioDetail; v2 responses are not enriched with the
// full snapshot because the endpoint already includes everything it knows.
type BookingV2Studio struct {
	StudioUUID  string
	Name        string
	TimeZone    string
	Email       string
	PhoneNumber string
	Latitude    float64
	Longitude   float64
	Address     *StudioLocation
}

func (s *BookingV2Studio) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&s.StudioUUID, "id"); err != nil {
		return err
	}
	if _, err := obj.get(&s.Name, "name"); err != nil {
		return err
	}
	if _, err := obj.get(&s.TimeZone, "time_zone", "timeZone"); err != nil {
		return err
	}
	if _, err := obj.get(&s.Email, "email"); err != nil {
		return err
	}
	if _, err := obj.get(&s.PhoneNumber, "phone", "phoneNumber"); err != nil {
		return err
	}
	if _, err := obj.get(&s.Latitude, "latitude"); err != nil {
		return err
	}
	if _, err := obj.get(&s.Longitude, "longitude"); err != nil {
		return err
	}
	if _, err := obj.get(&s.Address, "address"); err != nil {
		return err
	}
	return nil
}

// BookingV2Class is the class block on a v2 booking. The server omits an
// explicit end time here; EndsAt derives one from the class type.
type BookingV2Class struct {
	ClassID string
	Name    string
	Type    ClassType
	Starts  LocalTime

	// Only present when the class is ratable.
	ClassUUID string

	StartsUTC *LocalTime
	Studio    *BookingV2Studio
	Coach     string
}

func (c *BookingV2Class) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&c.ClassID, "id"); err != nil {
		return err
	}
	if err := obj.require(&c.Name, "name"); err != nil {
		return err
	}
	if err := obj.require(&c.Type, "type"); err != nil {
		return err
	}
	if err := obj.require(&c.Starts, "starts_at_local"); err != nil {
		return err
	}
	if _, err := obj.get(&c.ClassUUID, "ot_base_class_uuid"); err != nil {
		return err
	}
	if _, err := obj.get(&c.StartsUTC, "starts_at"); err != nil {
		return err
	}
	if _, err := obj.get(&c.Studio, "studio"); err != nil {
		return err
	}
	if _, err := obj.at(&c.Coach, "coach", "first_name"); err != nil {
		return err
	}
	return nil
}

// EndsAt is the start time plus the typical duration for the class type.
func (c *BookingV2Class) EndsAt() time.Time {
	return c.Starts.Add(c.Type.Duration())
}

// DayOfWeek of the class's local start time.
func (c *BookingV2Class) DayOfWeek() time.Weekday {
	return c.Starts.Weekday()
}

// BookingV2Workout is the workout stub attached to an attended v2 booking.
// Its ID doubles as the performance summary id.
type BookingV2Workout struct {
	ID                string `json:"id"`
	CaloriesBurned    int    `json:"calories_burned"`
	SplatPoints       int    `json:"splat_points"`
	StepCount         int    `json:"step_count"`
	ActiveTimeSeconds int    `json:"active_time_seconds"`
}

// Rating is a recorded class or coach rating.
type Rating struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Value       int    `json:"value"`
}

// BookingV2 is a reservation from the v2 bookings endpoint. Unlike the legacy
// generation it has no status field; the status is derived from flags.
type BookingV2 struct {
	ID           string
	MemberUUID   string
	ServiceName  string
	CheckedIn    bool
	Canceled     bool
	LateCanceled bool
	CanceledAt   *LocalTime
	Ratable      bool
	PersonID     string

	Class   BookingV2Class
	Workout *BookingV2Workout

	ClassRating *Rating
	CoachRating *Rating

	CreatedAt *LocalTime
	UpdatedAt LocalTime

	client *Client
}

func (b *BookingV2) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&b.ID, "id"); err != nil {
		return err
	}
	if err := obj.require(&b.MemberUUID, "member_id"); err != nil {
		return err
	}
	if _, err := obj.get(&b.ServiceName, "service_name"); err != nil {
		return err
	}
	if err := obj.require(&b.CheckedIn, "checked_in"); err != nil {
		return err
	}
	if err := obj.require(&b.Canceled, "canceled"); err != nil {
		return err
	}
	if _, err := obj.get(&b.LateCanceled, "late_canceled"); err != nil {
		return err
	}
	if _, err := obj.get(&b.CanceledAt, "canceled_at"); err != nil {
		return err
	}
	if _, err := obj.get(&b.Ratable, "ratable"); err != nil {
		return err
	}
	if _, err := obj.get(&b.PersonID, "person_id"); err != nil {
		return err
	}
	if err := obj.require(&b.Class, "class"); err != nil {
		return err
	}
	if _, err := obj.get(&b.Workout, "workout"); err != nil {
		return err
	}
	if _, err := obj.at(&b.ClassRating, "ratings", "class"); err != nil {
		return err
	}
	if _, err := obj.at(&b.CoachRating, "ratings", "coach"); err != nil {
		return err
	}
	if _, err := obj.get(&b.CreatedAt, "created_at"); err != nil {
		return err
	}
	if err := obj.require(&b.UpdatedAt, "updated_at"); err != nil {
		return err
	}
	return nil
}

// BookingID implements BookingRef.
func (b *BookingV2) BookingID() string { return b.ID }

// StudioUUID implements BookingRef.
func (b *BookingV2) StudioUUID() string {
	if b.Class.Studio == nil {
		return ""
	}
	return b.Class.Studio.StudioUUID
}

// ClassUUID implements BookingRef.
func (b *BookingV2) ClassUUID() string { return b.Class.ClassUUID }

// StartsAt implements BookingRef.
func (b *BookingV2) StartsAt() time.Time { return b.Class.Starts.Time }

// EndsAt implements BookingRef.
func (b *BookingV2) EndsAt() time.Time { return b.Class.EndsAt() }

// BookingStatus maps the v2 flags onto the legacy vocabulary, with less
// specificity than the legacy endpoint provides.
func (b *BookingV2) BookingStatus() BookingStatus {
	switch {
	case b.LateCanceled:
		return BookingStatusLateCancelled
	case b.CheckedIn:
		return BookingStatusCheckedIn
	case b.Canceled:
		return BookingStatusCancelled
	default:
		return BookingStatusBooked
	}
}

// Cancel cancels this booking through the v2 endpoint. Cancelling an
// already-cancelled booking surfaces BookingAlreadyCancelledError.
func (b *BookingV2) Cancel(ctx context.Context) error {
	if b.client == nil {
		return &ConfigurationError{Message: "booking is not attached to a client"}
	}
	return b.client.Bookings.CancelV2(ctx, b)
}

var _ BookingRef = (*BookingV2)(nil)
