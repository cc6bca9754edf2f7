package repo

import (
	"context"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/pkordes/rentaway/internal/domain"
)

// boltBookingRepo is the Bolt implementation of BookingRepo.
// Bolt allows a single writer at a time, so the read-check-write sequences
// in Create and Cancel are serialized without extra locking.
type boltBookingRepo struct {
	db *bolt.DB
}

// NewBoltBookingRepo constructs a BookingRepo backed by a Bolt database
// opened with OpenBolt.
func NewBoltBookingRepo(db *bolt.DB) BookingRepo {
	return &boltBookingRepo{db: db}
}

func (r *boltBookingRepo) Create(_ context.Context, b domain.Booking) (domain.Booking, error) {
	now := time.Now().UTC()
	b.ID = uuid.New()
	b.Status = domain.BookingStatusConfirmed
	b.CreatedAt = now
	b.UpdatedAt = now

	err := r.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(listingsBucket)).Get(b.ListingID[:]) == nil {
			return domain.ErrNotFound
		}

		bb := tx.Bucket([]byte(bookingsBucket))
		_, found, err := findActive(bb, b.ListingID, b.UserID)
		if err != nil {
			return err
		}
		if found {
			return domain.ErrConflict
		}
		return putJSON(bb, b.ID[:], b)
	})
	if err != nil {
		return domain.Booking{}, wrapErr("repo.BoltBookingRepo.Create", err)
	}
	return b, nil
}

func (r *boltBookingRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.View(func(tx *bolt.Tx) error {
		ok, err := getJSON(tx.Bucket([]byte(bookingsBucket)), id[:], &b)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Booking{}, wrapErr("repo.BoltBookingRepo.GetByID", err)
	}
	return b, nil
}

func (r *boltBookingRepo) FindActive(_ context.Context, listingID uuid.UUID, userID string) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.View(func(tx *bolt.Tx) error {
		found, ok, err := findActive(tx.Bucket([]byte(bookingsBucket)), listingID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		b = found
		return nil
	})
	if err != nil {
		return domain.Booking{}, wrapErr("repo.BoltBookingRepo.FindActive", err)
	}
	return b, nil
}

func (r *boltBookingRepo) Cancel(_ context.Context, id uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.Update(func(tx *bolt.Tx) error {
		bb := tx.Bucket([]byte(bookingsBucket))
		ok, err := getJSON(bb, id[:], &b)
		if err != nil {
			return err
		}
		if !ok || !b.IsActive() {
			return domain.ErrNotFound
		}
		b.Status = domain.BookingStatusCancelled
		b.UpdatedAt = time.Now().UTC()
		return putJSON(bb, id[:], b)
	})
	if err != nil {
		return domain.Booking{}, wrapErr("repo.BoltBookingRepo.Cancel", err)
	}
	return b, nil
}

func (r *boltBookingRepo) CountActiveByListing(_ context.Context, listingID uuid.UUID) (int, error) {
	n := 0
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bookingsBucket)).ForEach(func(_, v []byte) error {
			var b domain.Booking
			if err := json.Unmarshal(v, &b); err != nil {
				return err
			}
			if b.ListingID == listingID && b.IsActive() {
				n++
			}
			return nil
		})
	})
	if err != nil {
		return 0, wrapErr("repo.BoltBookingRepo.CountActiveByListing", err)
	}
	return n, nil
}

// findActive scans the bookings bucket for the confirmed booking of a
// (listing, user) pair.
func findActive(bb *bolt.Bucket, listingID uuid.UUID, userID string) (domain.Booking, bool, error) {
	var (
		out   domain.Booking
		found bool
	)
	err := bb.ForEach(func(_, v []byte) error {
		if found {
			return nil
		}
		var b domain.Booking
		if err := json.Unmarshal(v, &b); err != nil {
			return err
		}
		if b.ListingID == listingID && b.UserID == userID && b.IsActive() {
			out, found = b, true
		}
		return nil
	})
	return out, found, err
}
