package otf_api

import (
	"context"
	"time"
)

// Class is a bookable session from the classes endpoint. The raw response
// carries only a thin studio stub; the bookings API substitutes the full
// StudioDetail and fills the two derived booleans before returning it.
type Class struct {
	ClassUUID string
	ClassID   string
	Name      string
	Type      ClassType
	Coach     string
	Starts    LocalTime
	Ends      LocalTime

	BookingCapacity   int
	MaxCapacity       int
	Full              bool
	WaitlistAvailable bool
	WaitlistSize      int
	IsCancelled       bool

	// Full studio snapshot, substituted in place of the response's stub.
	Studio *StudioDetail

	// Derived at fetch time by cross-referencing the member's bookings.
	IsBooked     bool
	IsHomeStudio bool

	client *Client
}

func (c *Class) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	if err := obj.require(&c.ClassUUID, "ot_base_class_uuid"); err != nil {
		return err
	}
	if _, err := obj.get(&c.ClassID, "id"); err != nil {
		return err
	}
	if _, err := obj.get(&c.Name, "name"); err != nil {
		return err
	}
	if err := obj.require(&c.Type, "type"); err != nil {
		return err
	}
	if _, err := obj.at(&c.Coach, "coach", "first_name"); err != nil {
		return err
	}
	if err := obj.require(&c.Starts, "starts_at_local"); err != nil {
		return err
	}
	if _, err := obj.get(&c.Ends, "ends_at_local"); err != nil {
		return err
	}
	if _, err := obj.get(&c.BookingCapacity, "booking_capacity"); err != nil {
		return err
	}
	if _, err := obj.get(&c.MaxCapacity, "max_capacity"); err != nil {
		return err
	}
	if _, err := obj.get(&c.Full, "full"); err != nil {
		return err
	}
	if _, err := obj.get(&c.WaitlistAvailable, "waitlist_available"); err != nil {
		return err
	}
	if _, err := obj.get(&c.WaitlistSize, "waitlist_size"); err != nil {
		return err
	}
	if _, err := obj.get(&c.IsCancelled, "canceled"); err != nil {
		return err
	}
	return nil
}

// EndsAt is the explicit end time when the server provided one, otherwise the
// start time plus the typical duration for the class type.
func (c *Class) EndsAt() time.Time {
	if !c.Ends.IsZero() {
		return c.Ends.Time
	}
	return c.Starts.Add(c.Type.Duration())
}

// DayOfWeek of the class's local start time.
func (c *Class) DayOfWeek() time.Weekday {
	return c.Starts.Weekday()
}

// HasAvailability reports whether the class can still be booked directly.
func (c *Class) HasAvailability() bool {
	return !c.Full
}

// Book books this class through the legacy endpoint.
func (c *Class) Book(ctx context.Context) (*Booking, error) {
	if c.client == nil {
		return nil, &ConfigurationError{Message: "class is not attached to a client"}
	}
	booking, err := c.client.Bookings.Book(ctx, c)
	if err != nil {
		return nil, err
	}
	c.IsBooked = true
	return booking, nil
}

// CancelBooking cancels the member's booking on this class, looking the
// booking up first.
func (c *Class) CancelBooking(ctx context.Context) error {
	if c.client == nil {
		return &ConfigurationError{Message: "class is not attached to a client"}
	}
	booking, err := c.client.Bookings.GetBookingForClass(ctx, c.ClassUUID)
	if err != nil {
		return err
	}
	return booking.Cancel(ctx)
}
