package booking

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound       = errors.New("Booking not found")
	ErrGuestRequired         = errors.New("guest_name and guest_email are required")
	ErrInvalidGuestEmail     = errors.New("Invalid guest email")
	ErrInvalidStay           = errors.New("check_out must be after check_in")
	ErrCheckInInPast         = errors.New("check_in cannot be in the past")
	ErrInvalidGuests         = errors.New("guests must be between 1 and the room capacity")
	ErrRoomOutOfService      = errors.New("Room is not open for bookings")
	ErrRoomNotAvailable      = errors.New("Room is not available for the selected dates")
	ErrTooEarlyToCheckIn     = errors.New("Cannot check in before the check-in date")
	ErrPaymentsNotConfigured = errors.New("Stripe is not configured")
	ErrNotPayable            = errors.New("Booking cannot be paid in its current status")
	ErrNothingOutstanding    = errors.New("Booking is already paid in full")
)

// TransitionError reports a status change the booking lifecycle does not allow.
type TransitionError struct {
	Action string
	Status string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot %s a %s booking", e.Action, e.Status)
}
