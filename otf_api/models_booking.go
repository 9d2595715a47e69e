package otf_api

import (
	"context"
	"time"
)

// BookingRef is the read-only capability surface shared by the two booking
// generations. The legacy and v2 systems disagree on identifiers and status
// vocabulary, so they stay distinct types; this interface lets calling code
// treat a reservation uniformly without unifying the schemas.
type BookingRef interface {
	// BookingID is the identifier used to cancel the booking. Legacy bookings
	// use a UUID, v2 bookings an opaque id; the two are not interchangeable.
	BookingID() string
	StudioUUID() string
	ClassUUID() string
	StartsAt() time.Time
	EndsAt() time.Time
	BookingStatus() BookingStatus
	Cancel(ctx context.Context) error
}

// BookingCoach is the coach block on a legacy booking's class.
type BookingCoach struct {
	CoachUUID string `json:"coachUUId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// BookingClass is the class block embedded in a legacy booking. The studio
// stub the endpoint returns is replaced with a full StudioDetail snapshot by
// the bookings API before the booking reaches the caller.
type BookingClass struct {
	ClassUUID   string
	Name        string
	Starts      LocalTime
	Ends        LocalTime
	IsAvailable bool
	IsCancelled bool
	Studio      *StudioDetail
	Coach       BookingCoach
}

func (c *BookingClass) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&c.ClassUUID, "classUUId"); err != nil {
		return err
	}
	if _, err := obj.get(&c.Name, "name"); err != nil {
		return err
	}
	if err := obj.require(&c.Starts, "startDateTime"); err != nil {
		return err
	}
	if err := obj.require(&c.Ends, "endDateTime"); err != nil {
		return err
	}
	if _, err := obj.get(&c.IsAvailable, "isAvailable"); err != nil {
		return err
	}
	if _, err := obj.get(&c.IsCancelled, "isCancelled"); err != nil {
		return err
	}
	if _, err := obj.get(&c.Studio, "studio"); err != nil {
		return err
	}
	if _, err := obj.get(&c.Coach, "coach"); err != nil {
		return err
	}
	return nil
}

// Booking is a reservation from the legacy bookings endpoint.
type Booking struct {
	BookingUUID      string
	Status           BookingStatus
	IsIntro          bool
	BookedDate       *LocalTime
	CheckedInDate    *LocalTime
	CancelledDate    *LocalTime
	WaitlistPosition int
	Class            BookingClass

	// True when the class is at the member's home studio. Derived by the
	// bookings API, not present in the response.
	IsHomeStudio bool

	client *Client
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&b.BookingUUID, "classBookingUUId"); err != nil {
		return err
	}
	if err := obj.require(&b.Status, "status"); err != nil {
		return err
	}
	if _, err := obj.get(&b.IsIntro, "isIntro"); err != nil {
		return err
	}
	if _, err := obj.get(&b.BookedDate, "bookedDate"); err != nil {
		return err
	}
	if _, err := obj.get(&b.CheckedInDate, "checkedInDate"); err != nil {
		return err
	}
	if _, err := obj.get(&b.CancelledDate, "cancelledDate"); err != nil {
		return err
	}
	if _, err := obj.get(&b.WaitlistPosition, "waitlistPosition"); err != nil {
		return err
	}
	if err := obj.require(&b.Class, "class"); err != nil {
		return err
	}
	return nil
}

// BookingID implements BookingRef.
func (b *Booking) BookingID() string { return b.BookingUUID }

// StudioUUID implements BookingRef.
func (b *Booking) StudioUUID() string {
	if b.Class.Studio == nil {
		return ""
	}
	return b.Class.Studio.StudioUUID
}

// ClassUUID implements BookingRef.
func (b *Booking) ClassUUID() string { return b.Class.ClassUUID }

// StartsAt implements BookingRef.
func (b *Booking) StartsAt() time.Time { return b.Class.Starts.Time }

// EndsAt implements BookingRef.
func (b *Booking) EndsAt() time.Time { return b.Class.Ends.Time }

// BookingStatus implements BookingRef.
func (b *Booking) BookingStatus() BookingStatus { return b.Status }

// Cancel cancels this booking through the legacy endpoint. Cancelling an
// already-cancelled booking surfaces BookingAlreadyCancelledError.
func (b *Booking) Cancel(ctx context.Context) error {
	if b.client == nil {
		return &ConfigurationError{Message: "booking is not attached to a client"}
	}
	return b.client.Bookings.Cancel(ctx, b)
}

var _ BookingRef = (*Booking)(nil)
