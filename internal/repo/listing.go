package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/rentaway/internal/domain"
)

// ListingRepo defines the persistence operations for Listings and their
// ordered booking references.
// The service layer depends on this interface, not a concrete implementation,
// which allows the service to be unit-tested with a mock.
type ListingRepo interface {
	// Create inserts a new listing and returns the persisted record (with
	// generated id, created_at, and updated_at populated).
	Create(ctx context.Context, listing domain.Listing) (domain.Listing, error)

	// GetByID retrieves a single listing, including its booking references in
	// creation order. Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error)

	// ListPaged returns one page of listings, newest first, and the total count.
	// Booking references are not loaded.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error)

	// SearchByLocation returns listings whose location matches location
	// case-insensitively, newest first.
	SearchByLocation(ctx context.Context, location string) ([]domain.Listing, error)

	// Update overwrites the mutable fields of a listing and returns the updated
	// record. Returns domain.ErrNotFound if no listing with that ID exists.
	Update(ctx context.Context, listing domain.Listing) (domain.Listing, error)

	// Delete removes a listing by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AppendBooking appends bookingID to the listing's booking references.
	// Returns domain.ErrNotFound if the listing does not exist.
	AppendBooking(ctx context.Context, listingID, bookingID uuid.UUID) error
}

// pgListingRepo is the Postgres implementation of ListingRepo.
type pgListingRepo struct {
	db db
}

// NewListingRepo constructs a ListingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewListingRepo(db db) ListingRepo {
	return &pgListingRepo{db: db}
}

const listingColumns = `id, owner_id, title, description, location, country, price, image_url, created_at, updated_at`

// Create inserts a new listing row and returns the full persisted record.
func (r *pgListingRepo) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	const q = `
		INSERT INTO listings (owner_id, title, description, location, country, price, image_url)
		VALUES (@owner_id, @title, @description, @location, @country, @price, @image_url)
		RETURNING ` + listingColumns

	args := pgx.NamedArgs{
		"owner_id":    l.OwnerID,
		"title":       l.Title,
		"description": l.Description,
		"location":    l.Location,
		"country":     l.Country,
		"price":       l.Price,
		"image_url":   l.ImageURL,
	}

	result, err := scanListing(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Listing{}, wrapErr("repo.ListingRepo.Create", err)
	}
	return result, nil
}

// GetByID retrieves a listing by primary key together with its booking references.
func (r *pgListingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	const q = `SELECT ` + listingColumns + ` FROM listings WHERE id = @id`

	result, err := scanListing(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Listing{}, wrapErr("repo.ListingRepo.GetByID", err)
	}

	ids, err := r.bookingIDs(ctx, id)
	if err != nil {
		return domain.Listing{}, wrapErr("repo.ListingRepo.GetByID: booking refs", err)
	}
	result.BookingIDs = ids
	return result, nil
}

// bookingIDs returns the listing's booking references ordered by position.
func (r *pgListingRepo) bookingIDs(ctx context.Context, listingID uuid.UUID) ([]uuid.UUID, error) {
	const q = `
		SELECT booking_id
		FROM listing_bookings
		WHERE listing_id = @listing_id
		ORDER BY position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"listing_id": listingID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, uuid.UUID(id.Bytes))
	}
	return ids, rows.Err()
}

// ListPaged returns one page of listings ordered by created_at descending.
func (r *pgListingRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM listings`).Scan(&total); err != nil {
		return nil, 0, wrapErr("repo.ListingRepo.ListPaged: count", err)
	}

	const q = `
		SELECT ` + listingColumns + `
		FROM listings
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	listings, err := r.query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, wrapErr("repo.ListingRepo.ListPaged", err)
	}
	return listings, total, nil
}

// SearchByLocation matches location case-insensitively, ignoring surrounding whitespace.
func (r *pgListingRepo) SearchByLocation(ctx context.Context, location string) ([]domain.Listing, error) {
	const q = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE lower(location) = lower(trim(@location))
		ORDER BY created_at DESC, id`

	listings, err := r.query(ctx, q, pgx.NamedArgs{"location": location})
	if err != nil {
		return nil, wrapErr("repo.ListingRepo.SearchByLocation", err)
	}
	return listings, nil
}

// Update overwrites the mutable fields of a listing. Owner is immutable.
func (r *pgListingRepo) Update(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	const q = `
		UPDATE listings
		SET title       = @title,
		    description = @description,
		    location    = @location,
		    country     = @country,
		    price       = @price,
		    image_url   = @image_url,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + listingColumns

	args := pgx.NamedArgs{
		"id":          l.ID,
		"title":       l.Title,
		"description": l.Description,
		"location":    l.Location,
		"country":     l.Country,
		"price":       l.Price,
		"image_url":   l.ImageURL,
	}

	result, err := scanListing(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Listing{}, wrapErr("repo.ListingRepo.Update", err)
	}
	return result, nil
}

// Delete removes a listing by primary key. Bookings and references cascade.
func (r *pgListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return wrapErr("repo.ListingRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr("repo.ListingRepo.Delete", domain.ErrNotFound)
	}
	return nil
}

// AppendBooking inserts a reference row; position is assigned by the sequence.
func (r *pgListingRepo) AppendBooking(ctx context.Context, listingID, bookingID uuid.UUID) error {
	const q = `
		INSERT INTO listing_bookings (listing_id, booking_id)
		VALUES (@listing_id, @booking_id)`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"listing_id": listingID, "booking_id": bookingID})
	if err != nil {
		return wrapErr("repo.ListingRepo.AppendBooking", err)
	}
	return nil
}

func (r *pgListingRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Listing, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// scanListing maps a single database row into a domain.Listing.
func scanListing(s scanner) (domain.Listing, error) {
	var (
		l  domain.Listing
		id pgtype.UUID
	)

	err := s.Scan(&id, &l.OwnerID, &l.Title, &l.Description, &l.Location,
		&l.Country, &l.Price, &l.ImageURL, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.Listing{}, err
	}

	l.ID = uuid.UUID(id.Bytes)
	l.BookingIDs = []uuid.UUID{}
	return l, nil
}
