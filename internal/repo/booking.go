package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/rentaway/internal/domain"
)

// BookingRepo defines the persistence operations for Bookings.
// There is no delete: bookings are only ever cancelled.
type BookingRepo interface {
	// Create inserts a new booking with status confirmed and returns the
	// persisted record. Returns domain.ErrConflict if the user already has an
	// active booking for the listing, domain.ErrNotFound if the listing is gone.
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// GetByID retrieves a single booking. Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// FindActive returns the confirmed booking for (listingID, userID).
	// Returns domain.ErrNotFound if there is none.
	FindActive(ctx context.Context, listingID uuid.UUID, userID string) (domain.Booking, error)

	// Cancel moves a booking from confirmed to cancelled and returns the
	// updated record. The transition is conditional: if the booking is not
	// currently confirmed (or does not exist) it returns domain.ErrNotFound
	// and writes nothing, so concurrent cancels commit exactly once.
	Cancel(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// CountActiveByListing returns how many confirmed bookings a listing has.
	CountActiveByListing(ctx context.Context, listingID uuid.UUID) (int, error)
}

// pgBookingRepo is the Postgres implementation of BookingRepo.
type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `id, listing_id, user_id, check_in, check_out, guests, status, created_at, updated_at`

// Create inserts a booking row. Status is always confirmed on creation.
func (r *pgBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings (listing_id, user_id, check_in, check_out, guests, status)
		VALUES (@listing_id, @user_id, @check_in, @check_out, @guests, 'confirmed')
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"listing_id": b.ListingID,
		"user_id":    b.UserID,
		"check_in":   pgtype.Date{Time: b.CheckIn, Valid: true},
		"check_out":  pgtype.Date{Time: b.CheckOut, Valid: true},
		"guests":     b.Guests,
	}

	result, err := scanBooking(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Booking{}, wrapErr("repo.BookingRepo.Create", err)
	}
	return result, nil
}

// GetByID retrieves a booking by primary key.
func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = @id`

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, wrapErr("repo.BookingRepo.GetByID", err)
	}
	return result, nil
}

// FindActive looks up the confirmed booking for a (listing, user) pair.
// The partial unique index guarantees at most one match.
func (r *pgBookingRepo) FindActive(ctx context.Context, listingID uuid.UUID, userID string) (domain.Booking, error) {
	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE listing_id = @listing_id
		  AND user_id    = @user_id
		  AND status     = 'confirmed'`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"listing_id": listingID, "user_id": userID})
	result, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, wrapErr("repo.BookingRepo.FindActive", err)
	}
	return result, nil
}

// Cancel performs a compare-and-set on status.
func (r *pgBookingRepo) Cancel(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status     = 'cancelled',
		    updated_at = now()
		WHERE id = @id
		  AND status = 'confirmed'
		RETURNING ` + bookingColumns

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, wrapErr("repo.BookingRepo.Cancel", err)
	}
	return result, nil
}

// CountActiveByListing counts confirmed bookings for a listing.
func (r *pgBookingRepo) CountActiveByListing(ctx context.Context, listingID uuid.UUID) (int, error) {
	const q = `
		SELECT count(*)
		FROM bookings
		WHERE listing_id = @listing_id
		  AND status = 'confirmed'`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"listing_id": listingID}).Scan(&n); err != nil {
		return 0, wrapErr("repo.BookingRepo.CountActiveByListing", err)
	}
	return n, nil
}

// scanBooking maps a single database row into a domain.Booking.
// It handles the UUID and date conversions.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b         domain.Booking
		id        pgtype.UUID
		listingID pgtype.UUID
		checkIn   pgtype.Date
		checkOut  pgtype.Date
		status    string
	)

	err := s.Scan(&id, &listingID, &b.UserID, &checkIn, &checkOut, &b.Guests,
		&status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Booking{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.ListingID = uuid.UUID(listingID.Bytes)
	b.CheckIn = checkIn.Time
	b.CheckOut = checkOut.Time
	b.Status = domain.BookingStatus(status)
	return b, nil
}
