package otf_api

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// RequestError is a terminal request failure: a 4xx the client has no more
// specific mapping for, or a 2xx response whose body carries a logical error.
// It is never retried.
type RequestError struct {
	Status  int
	Path    string
	Body    []byte
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request to %s failed: %s (status %d)", e.Path, e.Message, e.Status)
	}
	return fmt.Sprintf("request to %s failed with status %d: %s", e.Path, e.Status, e.Body)
}

// RetryableRequestError is a transient failure: a 5xx response or a
// network-level error (including timeouts). The transport retries these.
type RetryableRequestError struct {
	Status int
	Path   string
	Err    error
}

func (e *RetryableRequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient error on %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("transient error on %s: status %d", e.Path, e.Status)
}

func (e *RetryableRequestError) Unwrap() error { return e.Err }

// ResourceNotFoundError indicates the requested entity does not exist
// upstream (HTTP 404 or an empty detail response where one was expected).
type ResourceNotFoundError struct {
	Resource string
}

func (e *ResourceNotFoundError) Error() string {
	if e.Resource == "" {
		return "resource not found"
	}
	return e.Resource + " not found"
}

// AlreadyBookedError is returned when booking a class the member already has
// a live booking for, either detected locally or reported by the API.
type AlreadyBookedError struct {
	ClassUUID   string
	BookingUUID string
}

func (e *AlreadyBookedError) Error() string {
	return fmt.Sprintf("class %s is already booked", e.ClassUUID)
}

// BookingAlreadyCancelledError is returned when cancelling a booking that has
// already been cancelled. The legacy API reports this under a NOT_AUTHORIZED
// code with a fixed message prefix; the v2 API uses a BOOKING_CANCELED code.
type BookingAlreadyCancelledError struct {
	BookingID string
}

func (e *BookingAlreadyCancelledError) Error() string {
	return fmt.Sprintf("booking %s is already cancelled", e.BookingID)
}

// BookingNotFoundError indicates a booking lookup by id or class found
// nothing.
type BookingNotFoundError struct {
	BookingID string
}

func (e *BookingNotFoundError) Error() string {
	return fmt.Sprintf("booking %s not found", e.BookingID)
}

// ConflictingBookingError is returned by Book when the member already has a
// booking whose time window intersects the target class.
type ConflictingBookingError struct {
	ClassUUID   string
	BookingUUID string
}

func (e *ConflictingBookingError) Error() string {
	return fmt.Sprintf("an existing booking (%s) conflicts with class %s", e.BookingUUID, e.ClassUUID)
}

// OutsideSchedulingWindowError maps the legacy API's errorCode 602.
type OutsideSchedulingWindowError struct {
	ClassUUID string
}

func (e *OutsideSchedulingWindowError) Error() string {
	return fmt.Sprintf("class %s is outside the scheduling window", e.ClassUUID)
}

// AlreadyRatedError is returned when rating a workout that already carries a
// class or coach rating.
type AlreadyRatedError struct {
	PerformanceSummaryID string
}

func (e *AlreadyRatedError) Error() string {
	return fmt.Sprintf("workout %s is already rated", e.PerformanceSummaryID)
}

// ClassNotRatableError is returned when rating a workout the server has not
// flagged as ratable, or one with no class UUID to attach the rating to.
type ClassNotRatableError struct {
	PerformanceSummaryID string
}

func (e *ClassNotRatableError) Error() string {
	return fmt.Sprintf("workout %s is not ratable", e.PerformanceSummaryID)
}

// ConfigurationError indicates misuse of the library itself, such as calling
// a mutation method on an entity that was constructed without a client.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ValidationError is raised during normalization when a required upstream
// field is absent or cannot be coerced. It always names the offending field.
type ValidationError struct {
	Field string
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid field %q: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("required field %q is missing", e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

const cancelledMessagePrefix = "This class booking has been cancelled"

var (
	// /v1/bookings/me/<id>, the v2 booking-by-id pattern.
	bookingV2PathRe = regexp.MustCompile(`^/v1/bookings/me/([^/]+)$`)
	// /member/members/<uuid>/bookings[/<id>], the legacy bookings pattern.
	bookingLegacyPathRe = regexp.MustCompile(`^/member/members/[^/]+/bookings(?:/([^/]+))?$`)
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		ErrorCode string `json:"errorCode"`
	} `json:"data"`
}

// mapError converts a non-2xx response (or an error-shaped 2xx body on the
// booking endpoints) into the domain error taxonomy. It never returns nil.
func mapError(status int, path string, body []byte) error {
	if status == 404 {
		return &ResourceNotFoundError{}
	}

	var parsed errorBody
	_ = json.Unmarshal(body, &parsed) // best effort; fall through on garbage

	if m := bookingV2PathRe.FindStringSubmatch(path); m != nil {
		switch parsed.Code {
		case "BOOKING_CANCELED":
			return &BookingAlreadyCancelledError{BookingID: m[1]}
		case "BOOKING_ALREADY_BOOKED":
			return &AlreadyBookedError{}
		}
	}

	if m := bookingLegacyPathRe.FindStringSubmatch(path); m != nil {
		// The legacy API conflates "not found" and "already cancelled" under
		// NOT_AUTHORIZED. Kept as-is; cancel surfaces the distinction by
		// re-fetching the booking first.
		if parsed.Code == "NOT_AUTHORIZED" && strings.HasPrefix(parsed.Message, cancelledMessagePrefix) {
			return &BookingAlreadyCancelledError{BookingID: m[1]}
		}
		if parsed.Code == "ERROR" {
			switch parsed.Data.ErrorCode {
			case "603":
				return &AlreadyBookedError{}
			case "602":
				return &OutsideSchedulingWindowError{}
			}
		}
	}

	if status >= 500 {
		return &RetryableRequestError{Status: status, Path: path}
	}

	return &RequestError{Status: status, Path: path, Body: body}
}
