package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/rentaway/internal/domain"
	"github.com/pkordes/rentaway/internal/notify"
	"github.com/pkordes/rentaway/internal/repo"
)

// mockListingRepo is a hand-written test double for repo.ListingRepo.
// Each method is a function field; set only the ones your test needs.
type mockListingRepo struct {
	create           func(ctx context.Context, l domain.Listing) (domain.Listing, error)
	getByID          func(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	listPaged        func(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error)
	searchByLocation func(ctx context.Context, location string) ([]domain.Listing, error)
	update           func(ctx context.Context, l domain.Listing) (domain.Listing, error)
	delete           func(ctx context.Context, id uuid.UUID) error
	appendBooking    func(ctx context.Context, listingID, bookingID uuid.UUID) error
}

func (m *mockListingRepo) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	return m.create(ctx, l)
}
func (m *mockListingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	return m.getByID(ctx, id)
}
func (m *mockListingRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockListingRepo) SearchByLocation(ctx context.Context, location string) ([]domain.Listing, error) {
	return m.searchByLocation(ctx, location)
}
func (m *mockListingRepo) Update(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	return m.update(ctx, l)
}
func (m *mockListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockListingRepo) AppendBooking(ctx context.Context, listingID, bookingID uuid.UUID) error {
	return m.appendBooking(ctx, listingID, bookingID)
}

// mockBookingRepo is a hand-written test double for repo.BookingRepo.
type mockBookingRepo struct {
	create               func(ctx context.Context, b domain.Booking) (domain.Booking, error)
	getByID              func(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	findActive           func(ctx context.Context, listingID uuid.UUID, userID string) (domain.Booking, error)
	cancel               func(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	countActiveByListing func(ctx context.Context, listingID uuid.UUID) (int, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return m.create(ctx, b)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingRepo) FindActive(ctx context.Context, listingID uuid.UUID, userID string) (domain.Booking, error) {
	return m.findActive(ctx, listingID, userID)
}
func (m *mockBookingRepo) Cancel(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return m.cancel(ctx, id)
}
func (m *mockBookingRepo) CountActiveByListing(ctx context.Context, listingID uuid.UUID) (int, error) {
	return m.countActiveByListing(ctx, listingID)
}

// sentMail is one call recorded by recordingGateway.
type sentMail struct {
	To, Subject, HTML string
}

// recordingGateway records every Send and returns err (nil by default).
type recordingGateway struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (g *recordingGateway) Send(_ context.Context, to, subject, htmlBody string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMail{To: to, Subject: subject, HTML: htmlBody})
	return g.err
}

func (g *recordingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

// compile-time checks.
var (
	_ repo.ListingRepo = (*mockListingRepo)(nil)
	_ repo.BookingRepo = (*mockBookingRepo)(nil)
	_ notify.Gateway   = (*recordingGateway)(nil)
)

// discardLogger returns a logger whose output goes nowhere useful.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
