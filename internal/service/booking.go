package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pkordes/rentaway/internal/domain"
	"github.com/pkordes/rentaway/internal/notify"
	"github.com/pkordes/rentaway/internal/repo"
)

// BookingService runs the booking lifecycle: create, cancel, and the email
// that follows each. Persistence failures abort the operation; notification
// failures never do. They only turn EmailSent off in the result.
//
// The email attempt completes before the method returns, so callers never
// see a result that races the notification.
type BookingService struct {
	listings repo.ListingRepo
	bookings repo.BookingRepo
	mailer   notify.Gateway
	log      *slog.Logger
	tracer   trace.Tracer
}

// NewBookingService constructs a BookingService.
func NewBookingService(listings repo.ListingRepo, bookings repo.BookingRepo, mailer notify.Gateway, log *slog.Logger) *BookingService {
	return &BookingService{
		listings: listings,
		bookings: bookings,
		mailer:   mailer,
		log:      log,
		tracer:   otel.Tracer("github.com/pkordes/rentaway/internal/service"),
	}
}

// CreateBooking books listingID for who.
//
//  1. Resolve the listing (domain.ErrNotFound if absent).
//  2. Persist the booking as confirmed. Any failure aborts; nothing is sent.
//  3. Append the booking to the listing's references. A failure here is
//     logged and the operation continues; the booking already exists.
//  4. Send the confirmation email. The outcome only sets EmailSent.
func (s *BookingService) CreateBooking(ctx context.Context, listingID uuid.UUID, who domain.Identity, stay domain.Stay) (_ domain.BookingResult, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.create", trace.WithAttributes(
		attribute.String("listing.id", listingID.String()),
		attribute.String("user.id", who.UserID),
	))
	defer func() { endSpan(span, err) }()

	if err := validateBooking(who, stay); err != nil {
		return domain.BookingResult{}, err
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return domain.BookingResult{}, fmt.Errorf("service.BookingService.CreateBooking: %w", err)
	}

	booking, err := s.bookings.Create(ctx, domain.Booking{
		ListingID: listing.ID,
		UserID:    who.UserID,
		CheckIn:   stay.CheckIn,
		CheckOut:  stay.CheckOut,
		Guests:    stay.Guests,
	})
	if err != nil {
		return domain.BookingResult{}, fmt.Errorf("service.BookingService.CreateBooking: %w", err)
	}
	span.SetAttributes(attribute.String("booking.id", booking.ID.String()))

	s.log.InfoContext(ctx, "booking created",
		"booking_id", booking.ID,
		"listing_id", listing.ID,
		"user_id", who.UserID,
	)

	if err := s.listings.AppendBooking(ctx, listing.ID, booking.ID); err != nil {
		s.log.ErrorContext(ctx, "booking not linked to listing",
			"booking_id", booking.ID,
			"listing_id", listing.ID,
			"error", err,
		)
		span.AddEvent("listing reference append failed")
	}

	sent := s.sendEmail(ctx, span, notify.ConfirmationMessage, who, listing, booking)

	return domain.BookingResult{
		Status:    domain.BookingStatusConfirmed,
		EmailSent: sent,
		Booking:   booking,
	}, nil
}

// CancelBooking cancels who's active booking on listingID.
//
//  1. Find the confirmed booking (domain.ErrNotFound if none; no writes).
//  2. Transition it to cancelled. Any failure aborts; nothing is sent.
//  3. Send the cancellation email. The outcome only sets EmailSent.
//
// The store transition is conditional, so of two concurrent cancels exactly
// one succeeds and the other returns domain.ErrNotFound.
func (s *BookingService) CancelBooking(ctx context.Context, listingID uuid.UUID, who domain.Identity) (_ domain.BookingResult, err error) {
	ctx, span := s.tracer.Start(ctx, "booking.cancel", trace.WithAttributes(
		attribute.String("listing.id", listingID.String()),
		attribute.String("user.id", who.UserID),
	))
	defer func() { endSpan(span, err) }()

	if who.IsZero() {
		return domain.BookingResult{}, fmt.Errorf("%w: caller identity is required", domain.ErrValidation)
	}

	active, err := s.bookings.FindActive(ctx, listingID, who.UserID)
	if err != nil {
		return domain.BookingResult{}, fmt.Errorf("service.BookingService.CancelBooking: %w", err)
	}
	span.SetAttributes(attribute.String("booking.id", active.ID.String()))

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return domain.BookingResult{}, fmt.Errorf("service.BookingService.CancelBooking: %w", err)
	}

	cancelled, err := s.bookings.Cancel(ctx, active.ID)
	if err != nil {
		return domain.BookingResult{}, fmt.Errorf("service.BookingService.CancelBooking: %w", err)
	}

	s.log.InfoContext(ctx, "booking cancelled",
		"booking_id", cancelled.ID,
		"listing_id", listingID,
		"user_id", who.UserID,
	)

	sent := s.sendEmail(ctx, span, notify.CancellationMessage, who, listing, cancelled)

	return domain.BookingResult{
		Status:    domain.BookingStatusCancelled,
		EmailSent: sent,
		Booking:   cancelled,
	}, nil
}

// composer builds a lifecycle email.
type composer func(domain.Identity, domain.Listing, domain.Booking) (notify.Message, error)

// sendEmail composes and sends one email and reports whether it went out.
// Failures are logged and recorded on the span, never returned.
func (s *BookingService) sendEmail(ctx context.Context, span trace.Span, compose composer, who domain.Identity, listing domain.Listing, b domain.Booking) bool {
	msg, err := compose(who, listing, b)
	if err == nil {
		err = s.mailer.Send(ctx, msg.To, msg.Subject, msg.HTML)
	}
	if err != nil {
		s.log.WarnContext(ctx, "booking email not sent",
			"booking_id", b.ID,
			"listing_id", listing.ID,
			"status", b.Status,
			"error", err,
		)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("email.sent", false))
		return false
	}
	span.SetAttributes(attribute.Bool("email.sent", true))
	return true
}

// validateBooking enforces the request rules checked before any I/O.
//   - A caller identity is required.
//   - CheckOut must be strictly after CheckIn.
//   - Guests must be at least 1.
func validateBooking(who domain.Identity, stay domain.Stay) error {
	if who.IsZero() {
		return fmt.Errorf("%w: caller identity is required", domain.ErrValidation)
	}
	if strings.TrimSpace(who.Email) == "" {
		return fmt.Errorf("%w: caller email is required", domain.ErrValidation)
	}
	if stay.CheckIn.IsZero() || stay.CheckOut.IsZero() {
		return fmt.Errorf("%w: check_in and check_out are required", domain.ErrValidation)
	}
	if !stay.CheckIn.Before(stay.CheckOut) {
		return fmt.Errorf("%w: check_out must be after check_in", domain.ErrValidation)
	}
	if stay.Guests < 1 {
		return fmt.Errorf("%w: guests must be at least 1", domain.ErrValidation)
	}
	return nil
}

// endSpan marks span failed for errors the caller will see, then ends it.
// Not-found and validation outcomes are expected and keep the span OK.
func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrValidation) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
