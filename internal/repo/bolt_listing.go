package repo

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/pkordes/rentaway/internal/domain"
)

// boltListingRepo is the Bolt implementation of ListingRepo.
// Each listing is stored as one JSON document keyed by its id, with its
// booking references embedded in creation order.
type boltListingRepo struct {
	db *bolt.DB
}

// NewBoltListingRepo constructs a ListingRepo backed by a Bolt database
// opened with OpenBolt.
func NewBoltListingRepo(db *bolt.DB) ListingRepo {
	return &boltListingRepo{db: db}
}

func (r *boltListingRepo) Create(_ context.Context, l domain.Listing) (domain.Listing, error) {
	now := time.Now().UTC()
	l.ID = uuid.New()
	l.BookingIDs = []uuid.UUID{}
	l.CreatedAt = now
	l.UpdatedAt = now

	err := r.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket([]byte(listingsBucket)), l.ID[:], l)
	})
	if err != nil {
		return domain.Listing{}, wrapErr("repo.BoltListingRepo.Create", err)
	}
	return l, nil
}

func (r *boltListingRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Listing, error) {
	var l domain.Listing
	err := r.db.View(func(tx *bolt.Tx) error {
		ok, err := getJSON(tx.Bucket([]byte(listingsBucket)), id[:], &l)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Listing{}, wrapErr("repo.BoltListingRepo.GetByID", err)
	}
	if l.BookingIDs == nil {
		l.BookingIDs = []uuid.UUID{}
	}
	return l, nil
}

func (r *boltListingRepo) ListPaged(_ context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
	all, err := r.all(nil)
	if err != nil {
		return nil, 0, wrapErr("repo.BoltListingRepo.ListPaged", err)
	}

	total := int64(len(all))
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end], total, nil
}

func (r *boltListingRepo) SearchByLocation(_ context.Context, location string) ([]domain.Listing, error) {
	want := strings.TrimSpace(location)
	listings, err := r.all(func(l domain.Listing) bool {
		return strings.EqualFold(strings.TrimSpace(l.Location), want)
	})
	if err != nil {
		return nil, wrapErr("repo.BoltListingRepo.SearchByLocation", err)
	}
	return listings, nil
}

func (r *boltListingRepo) Update(_ context.Context, l domain.Listing) (domain.Listing, error) {
	var out domain.Listing
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(listingsBucket))
		ok, err := getJSON(b, l.ID[:], &out)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		out.Title = l.Title
		out.Description = l.Description
		out.Location = l.Location
		out.Country = l.Country
		out.Price = l.Price
		out.ImageURL = l.ImageURL
		out.UpdatedAt = time.Now().UTC()
		return putJSON(b, out.ID[:], out)
	})
	if err != nil {
		return domain.Listing{}, wrapErr("repo.BoltListingRepo.Update", err)
	}
	out.BookingIDs = []uuid.UUID{}
	return out, nil
}

// Delete removes the listing and every booking that belongs to it.
func (r *boltListingRepo) Delete(_ context.Context, id uuid.UUID) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		lb := tx.Bucket([]byte(listingsBucket))
		var l domain.Listing
		ok, err := getJSON(lb, id[:], &l)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}

		bb := tx.Bucket([]byte(bookingsBucket))
		var doomed [][]byte
		err = bb.ForEach(func(k, v []byte) error {
			var bk domain.Booking
			if err := json.Unmarshal(v, &bk); err != nil {
				return err
			}
			if bk.ListingID == id {
				doomed = append(doomed, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range doomed {
			if err := bb.Delete(k); err != nil {
				return err
			}
		}
		return lb.Delete(id[:])
	})
	if err != nil {
		return wrapErr("repo.BoltListingRepo.Delete", err)
	}
	return nil
}

// AppendBooking refuses references to bookings of other listings so the
// listing/booking invariant holds in Bolt as it does under the Postgres FK.
func (r *boltListingRepo) AppendBooking(_ context.Context, listingID, bookingID uuid.UUID) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		var bk domain.Booking
		ok, err := getJSON(tx.Bucket([]byte(bookingsBucket)), bookingID[:], &bk)
		if err != nil {
			return err
		}
		if !ok || bk.ListingID != listingID {
			return domain.ErrNotFound
		}

		lb := tx.Bucket([]byte(listingsBucket))
		var l domain.Listing
		ok, err = getJSON(lb, listingID[:], &l)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		for _, existing := range l.BookingIDs {
			if existing == bookingID {
				return domain.ErrConflict
			}
		}
		l.BookingIDs = append(l.BookingIDs, bookingID)
		return putJSON(lb, listingID[:], l)
	})
	if err != nil {
		return wrapErr("repo.BoltListingRepo.AppendBooking", err)
	}
	return nil
}

// all returns every listing accepted by keep (nil keeps all), newest first.
// Booking references are not included, matching the Postgres list queries.
func (r *boltListingRepo) all(keep func(domain.Listing) bool) ([]domain.Listing, error) {
	listings := []domain.Listing{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(listingsBucket)).ForEach(func(_, v []byte) error {
			var l domain.Listing
			if err := json.Unmarshal(v, &l); err != nil {
				return err
			}
			if keep == nil || keep(l) {
				l.BookingIDs = []uuid.UUID{}
				listings = append(listings, l)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}
