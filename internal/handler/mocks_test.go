package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rentaway/internal/domain"
	"github.com/pkordes/rentaway/internal/handler"
	"github.com/pkordes/rentaway/internal/middleware"
)

// mockListingServicer is a test double for handler.ListingServicer.
// Set only the method fields your test needs.
type mockListingServicer struct {
	create    func(ctx context.Context, caller domain.Identity, l domain.Listing) (domain.Listing, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error)
	search    func(ctx context.Context, location string) ([]domain.Listing, error)
	update    func(ctx context.Context, caller domain.Identity, l domain.Listing) (domain.Listing, error)
	delete    func(ctx context.Context, caller domain.Identity, id uuid.UUID) error
	bookings  func(ctx context.Context, caller domain.Identity, id uuid.UUID) ([]domain.Booking, error)
}

func (m *mockListingServicer) Create(ctx context.Context, caller domain.Identity, l domain.Listing) (domain.Listing, error) {
	return m.create(ctx, caller, l)
}
func (m *mockListingServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	return m.getByID(ctx, id)
}
func (m *mockListingServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockListingServicer) Search(ctx context.Context, location string) ([]domain.Listing, error) {
	return m.search(ctx, location)
}
func (m *mockListingServicer) Update(ctx context.Context, caller domain.Identity, l domain.Listing) (domain.Listing, error) {
	return m.update(ctx, caller, l)
}
func (m *mockListingServicer) Delete(ctx context.Context, caller domain.Identity, id uuid.UUID) error {
	return m.delete(ctx, caller, id)
}
func (m *mockListingServicer) Bookings(ctx context.Context, caller domain.Identity, id uuid.UUID) ([]domain.Booking, error) {
	return m.bookings(ctx, caller, id)
}

// mockBookingServicer is a test double for handler.BookingServicer.
type mockBookingServicer struct {
	create func(ctx context.Context, listingID uuid.UUID, who domain.Identity, stay domain.Stay) (domain.BookingResult, error)
	cancel func(ctx context.Context, listingID uuid.UUID, who domain.Identity) (domain.BookingResult, error)
}

func (m *mockBookingServicer) CreateBooking(ctx context.Context, listingID uuid.UUID, who domain.Identity, stay domain.Stay) (domain.BookingResult, error) {
	return m.create(ctx, listingID, who, stay)
}
func (m *mockBookingServicer) CancelBooking(ctx context.Context, listingID uuid.UUID, who domain.Identity) (domain.BookingResult, error) {
	return m.cancel(ctx, listingID, who)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.ListingServicer = (*mockListingServicer)(nil)
	_ handler.BookingServicer = (*mockBookingServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the router.
// This mirrors exactly how main.go wires it in production.
func newHTTPHandler(listings handler.ListingServicer, bookings handler.BookingServicer) http.Handler {
	return handler.NewServer(listings, bookings, discardLogger()).Routes()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var alice = domain.Identity{UserID: "alice", Email: "alice@example.com", Username: "Alice"}

// asUser sets the identity headers the proxy would add.
func asUser(req *http.Request, who domain.Identity) *http.Request {
	req.Header.Set(middleware.HeaderUserID, who.UserID)
	req.Header.Set(middleware.HeaderUserEmail, who.Email)
	req.Header.Set(middleware.HeaderUserName, who.Username)
	return req
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func listingFixture() domain.Listing {
	return domain.Listing{
		ID:          uuid.New(),
		OwnerID:     "owner",
		Title:       "Cabin by the lake",
		Description: "Quiet two-bedroom cabin",
		Location:    "Lakeside",
		Country:     "Canada",
		Price:       12000,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func bookingFixture(listingID uuid.UUID, status domain.BookingStatus) domain.Booking {
	return domain.Booking{
		ID:        uuid.New(),
		ListingID: listingID,
		UserID:    alice.UserID,
		CheckIn:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		Guests:    2,
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}
