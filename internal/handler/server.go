// Package handler implements the HTTP handlers for the RentAway API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, listing.go, booking.go) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/rentaway/internal/domain"
	"github.com/pkordes/rentaway/internal/middleware"
)

// ListingServicer defines the listing operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching storage or the service layer.
type ListingServicer interface {
	Create(ctx context.Context, caller domain.Identity, l domain.Listing) (domain.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error)
	Search(ctx context.Context, location string) ([]domain.Listing, error)
	Update(ctx context.Context, caller domain.Identity, l domain.Listing) (domain.Listing, error)
	Delete(ctx context.Context, caller domain.Identity, id uuid.UUID) error
	Bookings(ctx context.Context, caller domain.Identity, id uuid.UUID) ([]domain.Booking, error)
}

// BookingServicer defines the booking lifecycle operations.
type BookingServicer interface {
	CreateBooking(ctx context.Context, listingID uuid.UUID, who domain.Identity, stay domain.Stay) (domain.BookingResult, error)
	CancelBooking(ctx context.Context, listingID uuid.UUID, who domain.Identity) (domain.BookingResult, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	listings ListingServicer
	bookings BookingServicer
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(listings ListingServicer, bookings BookingServicer, log *slog.Logger) *Server {
	return &Server{listings: listings, bookings: bookings, log: log}
}

// Routes returns the API router. bookingLimits wrap only the booking write
// routes (e.g. a rate limiter).
func (s *Server) Routes(bookingLimits ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Identity)

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/listings", func(r chi.Router) {
		r.Get("/", s.ListListings)
		r.Post("/", s.CreateListing)
		r.Get("/search", s.SearchListings)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetListing)
			r.Put("/", s.UpdateListing)
			r.Delete("/", s.DeleteListing)

			r.Get("/bookings", s.ListBookings)
			r.With(bookingLimits...).Post("/bookings", s.CreateBooking)
			r.With(bookingLimits...).Delete("/bookings", s.CancelBooking)
		})
	})
	return r
}
