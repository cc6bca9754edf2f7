package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a Booking.
// The only transition is confirmed → cancelled; cancelled is terminal.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a stay request for a listing. ListingID and UserID never change
// after creation, and bookings are never physically deleted by the lifecycle.
type Booking struct {
	ID        uuid.UUID     `json:"id"`
	ListingID uuid.UUID     `json:"listing_id"`
	UserID    string        `json:"user_id"`
	CheckIn   time.Time     `json:"check_in"`
	CheckOut  time.Time     `json:"check_out"`
	Guests    int           `json:"guests"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsActive reports whether the booking is still confirmed.
func (b Booking) IsActive() bool {
	return b.Status == BookingStatusConfirmed
}

// Stay carries the parameters of a booking request from the HTTP layer.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// BookingResult is the two-outcome result of a lifecycle operation: the
// state change has committed, and EmailSent reports whether the notification
// went out. A false EmailSent never means the operation failed.
type BookingResult struct {
	Status    BookingStatus `json:"status"`
	EmailSent bool          `json:"email_sent"`
	Booking   Booking       `json:"booking"`
}
