// Package service contains the business logic for the RentAway API.
// Services validate inputs, enforce business rules, and orchestrate repo and
// notification calls. No SQL lives here; services depend on repo interfaces.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/rentaway/internal/domain"
	"github.com/pkordes/rentaway/internal/repo"
)

// ListingService implements business logic for Listing operations.
// It holds the bookings repo because a listing with an active booking
// cannot be deleted.
type ListingService struct {
	listings repo.ListingRepo
	bookings repo.BookingRepo
}

// NewListingService constructs a ListingService backed by the provided repos.
func NewListingService(listings repo.ListingRepo, bookings repo.BookingRepo) *ListingService {
	return &ListingService{listings: listings, bookings: bookings}
}

// Create validates and persists a new listing owned by the caller.
func (s *ListingService) Create(ctx context.Context, caller domain.Identity, l domain.Listing) (domain.Listing, error) {
	if caller.IsZero() {
		return domain.Listing{}, fmt.Errorf("%w: caller identity is required", domain.ErrValidation)
	}
	l = normalizeListing(l)
	if err := validateListing(l); err != nil {
		return domain.Listing{}, err
	}
	l.OwnerID = caller.UserID

	result, err := s.listings.Create(ctx, l)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single listing with its booking references.
// Returns domain.ErrNotFound if it does not exist.
func (s *ListingService) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	result, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of listings and the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ListingService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	listings, total, err := s.listings.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListingService.ListPaged: %w", err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, total, nil
}

// Search returns listings at location. A blank location is a validation error
// rather than "match everything".
func (s *ListingService) Search(ctx context.Context, location string) ([]domain.Listing, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", domain.ErrValidation)
	}
	listings, err := s.listings.SearchByLocation(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("service.ListingService.Search: %w", err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, nil
}

// Update validates and persists changes to a listing the caller owns.
// Returns domain.ErrForbidden when the caller is not the owner.
func (s *ListingService) Update(ctx context.Context, caller domain.Identity, l domain.Listing) (domain.Listing, error) {
	l = normalizeListing(l)
	if err := validateListing(l); err != nil {
		return domain.Listing{}, err
	}
	if _, err := s.owned(ctx, caller, l.ID); err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Update: %w", err)
	}

	result, err := s.listings.Update(ctx, l)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a listing the caller owns. Returns domain.ErrConflict while
// the listing still has an active booking.
func (s *ListingService) Delete(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return fmt.Errorf("service.ListingService.Delete: %w", err)
	}

	active, err := s.bookings.CountActiveByListing(ctx, id)
	if err != nil {
		return fmt.Errorf("service.ListingService.Delete: %w", err)
	}
	if active > 0 {
		return fmt.Errorf("service.ListingService.Delete: %w: listing has %d active booking(s)", domain.ErrConflict, active)
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ListingService.Delete: %w", err)
	}
	return nil
}

// Bookings returns the listing's bookings in creation order. Only the owner
// may see them.
func (s *ListingService) Bookings(ctx context.Context, caller domain.Identity, id uuid.UUID) ([]domain.Booking, error) {
	l, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, fmt.Errorf("service.ListingService.Bookings: %w", err)
	}

	out := make([]domain.Booking, 0, len(l.BookingIDs))
	for _, bid := range l.BookingIDs {
		b, err := s.bookings.GetByID(ctx, bid)
		if err != nil {
			return nil, fmt.Errorf("service.ListingService.Bookings: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

// owned loads listing id and checks the caller owns it.
func (s *ListingService) owned(ctx context.Context, caller domain.Identity, id uuid.UUID) (domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if !l.IsOwnedBy(caller.UserID) {
		return domain.Listing{}, fmt.Errorf("%w: only the owner may change this listing", domain.ErrForbidden)
	}
	return l, nil
}

func normalizeListing(l domain.Listing) domain.Listing {
	l.Title = strings.TrimSpace(l.Title)
	l.Location = strings.TrimSpace(l.Location)
	l.Country = strings.TrimSpace(l.Country)
	return l
}

// validateListing enforces business rules common to both Create and Update.
//   - Title and Location must be non-empty.
//   - Price must not be negative.
func validateListing(l domain.Listing) error {
	if l.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if l.Location == "" {
		return fmt.Errorf("%w: location is required", domain.ErrValidation)
	}
	if l.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	return nil
}
