package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/rentaway/internal/domain"
	"github.com/pkordes/rentaway/internal/repo"
)

// memStore is an in-memory ListingRepo + BookingRepo used by the scenario
// and property tests. It counts writes so tests can assert "no writes".
// Cancel is conditional, mirroring the real stores.
type memStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]domain.Listing
	bookings map[uuid.UUID]domain.Booking
	writes   int

	failBookingCreate bool
	failAppend        bool
	failCancel        bool
}

func newMemStore() *memStore {
	return &memStore{
		listings: map[uuid.UUID]domain.Listing{},
		bookings: map[uuid.UUID]domain.Booking{},
	}
}

func (m *memStore) listingRepo() repo.ListingRepo { return memListings{m} }
func (m *memStore) bookingRepo() repo.BookingRepo { return memBookings{m} }

// addListing seeds a listing directly.
func (m *memStore) addListing(title, owner string) domain.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := domain.Listing{ID: uuid.New(), Title: title, OwnerID: owner, Location: "Goa", BookingIDs: []uuid.UUID{}}
	m.listings[l.ID] = l
	return l
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memStore) booking(id uuid.UUID) (domain.Booking, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	return b, ok
}

func (m *memStore) bookingsFor(listingID uuid.UUID) []domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.ListingID == listingID {
			out = append(out, b)
		}
	}
	return out
}

type memListings struct{ m *memStore }

func (r memListings) Create(_ context.Context, l domain.Listing) (domain.Listing, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.writes++
	l.ID = uuid.New()
	l.BookingIDs = []uuid.UUID{}
	r.m.listings[l.ID] = l
	return l, nil
}

func (r memListings) GetByID(_ context.Context, id uuid.UUID) (domain.Listing, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	l.BookingIDs = append([]uuid.UUID{}, l.BookingIDs...)
	return l, nil
}

func (r memListings) ListPaged(_ context.Context, _ domain.PaginationParams) ([]domain.Listing, int64, error) {
	return nil, 0, nil
}

func (r memListings) SearchByLocation(_ context.Context, _ string) ([]domain.Listing, error) {
	return nil, nil
}

func (r memListings) Update(_ context.Context, l domain.Listing) (domain.Listing, error) {
	return l, nil
}

func (r memListings) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r memListings) AppendBooking(_ context.Context, listingID, bookingID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failAppend {
		return domain.ErrPersistence
	}
	l, ok := r.m.listings[listingID]
	if !ok {
		return domain.ErrNotFound
	}
	r.m.writes++
	l.BookingIDs = append(l.BookingIDs, bookingID)
	r.m.listings[listingID] = l
	return nil
}

type memBookings struct{ m *memStore }

func (r memBookings) Create(_ context.Context, b domain.Booking) (domain.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failBookingCreate {
		return domain.Booking{}, domain.ErrPersistence
	}
	for _, existing := range r.m.bookings {
		if existing.ListingID == b.ListingID && existing.UserID == b.UserID && existing.IsActive() {
			return domain.Booking{}, domain.ErrConflict
		}
	}
	r.m.writes++
	b.ID = uuid.New()
	b.Status = domain.BookingStatusConfirmed
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	r.m.bookings[b.ID] = b
	return b, nil
}

func (r memBookings) GetByID(_ context.Context, id uuid.UUID) (domain.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (r memBookings) FindActive(_ context.Context, listingID uuid.UUID, userID string) (domain.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, b := range r.m.bookings {
		if b.ListingID == listingID && b.UserID == userID && b.IsActive() {
			return b, nil
		}
	}
	return domain.Booking{}, domain.ErrNotFound
}

func (r memBookings) Cancel(_ context.Context, id uuid.UUID) (domain.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failCancel {
		return domain.Booking{}, domain.ErrPersistence
	}
	b, ok := r.m.bookings[id]
	if !ok || !b.IsActive() {
		return domain.Booking{}, domain.ErrNotFound
	}
	r.m.writes++
	b.Status = domain.BookingStatusCancelled
	r.m.bookings[id] = b
	return b, nil
}

func (r memBookings) CountActiveByListing(_ context.Context, listingID uuid.UUID) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, b := range r.m.bookings {
		if b.ListingID == listingID && b.IsActive() {
			n++
		}
	}
	return n, nil
}
