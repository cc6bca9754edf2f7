package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/rentaway/internal/domain"
)

// BookingRequest is the body of POST /listings/{id}/bookings.
// Dates are calendar days ("2025-06-01").
type BookingRequest struct {
	CheckIn  openapi_types.Date `json:"check_in"`
	CheckOut openapi_types.Date `json:"check_out"`
	Guests   int                `json:"guests"`
}

// Booking is the JSON representation of a booking.
type Booking struct {
	ID        openapi_types.UUID `json:"id"`
	ListingID openapi_types.UUID `json:"listing_id"`
	UserID    string             `json:"user_id"`
	CheckIn   openapi_types.Date `json:"check_in"`
	CheckOut  openapi_types.Date `json:"check_out"`
	Guests    int                `json:"guests"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// BookingResult is the body of the booking create and cancel responses.
// EmailSent reports whether the notification went out; the booking change
// itself has already been committed either way.
type BookingResult struct {
	Status    string  `json:"status"`
	EmailSent bool    `json:"email_sent"`
	Booking   Booking `json:"booking"`
}

// BookingList is the body of GET /listings/{id}/bookings.
type BookingList struct {
	Data []Booking `json:"data"`
}

// CreateBooking handles POST /listings/{id}/bookings.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	var req BookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stay := domain.Stay{
		CheckIn:  req.CheckIn.Time,
		CheckOut: req.CheckOut.Time,
		Guests:   req.Guests,
	}
	result, err := s.bookings.CreateBooking(r.Context(), id, who, stay)
	if err != nil {
		s.fail(w, r, err, "listing")
		return
	}
	writeJSON(w, http.StatusCreated, resultToResponse(result))
}

// CancelBooking handles DELETE /listings/{id}/bookings, cancelling the
// caller's active booking on the listing.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	result, err := s.bookings.CancelBooking(r.Context(), id, who)
	if err != nil {
		s.fail(w, r, err, "active booking")
		return
	}
	writeJSON(w, http.StatusOK, resultToResponse(result))
}

// ListBookings handles GET /listings/{id}/bookings. Owner only.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	bookings, err := s.listings.Bookings(r.Context(), who, id)
	if err != nil {
		s.fail(w, r, err, "listing")
		return
	}
	if wantsCSV(r) {
		writeBookingsCSV(w, bookings)
		return
	}
	data := make([]Booking, len(bookings))
	for i, b := range bookings {
		data[i] = bookingToResponse(b)
	}
	writeJSON(w, http.StatusOK, BookingList{Data: data})
}

func bookingToResponse(b domain.Booking) Booking {
	return Booking{
		ID:        b.ID,
		ListingID: b.ListingID,
		UserID:    b.UserID,
		CheckIn:   openapi_types.Date{Time: b.CheckIn},
		CheckOut:  openapi_types.Date{Time: b.CheckOut},
		Guests:    b.Guests,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func resultToResponse(res domain.BookingResult) BookingResult {
	return BookingResult{
		Status:    string(res.Status),
		EmailSent: res.EmailSent,
		Booking:   bookingToResponse(res.Booking),
	}
}
