// Package domain contains the core data types for the RentAway application.
// This package depends only on uuid and is imported by every other
// internal package (repo, service, handler, notify).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a bookable property.
// BookingIDs is append-only and kept in booking creation order; every id in
// it refers to a Booking whose ListingID equals this listing's ID.
type Listing struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     string      `json:"owner_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location"`
	Country     string      `json:"country,omitempty"`
	Price       int64       `json:"price"` // minor currency units per night
	ImageURL    string      `json:"image_url,omitempty"`
	BookingIDs  []uuid.UUID `json:"booking_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsOwnedBy reports whether userID owns the listing.
func (l Listing) IsOwnedBy(userID string) bool {
	return userID != "" && l.OwnerID == userID
}
