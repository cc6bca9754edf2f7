package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rentaway/internal/domain"
	"github.com/pkordes/rentaway/internal/repo"
	"github.com/pkordes/rentaway/testutil"
)

// repoPair is one storage backend under test.
type repoPair struct {
	listings repo.ListingRepo
	bookings repo.BookingRepo
}

// newPGRepos opens a transaction against the test database and returns repos
// backed by it. The transaction is rolled back when the test finishes.
// Skips when TEST_DATABASE_URL is not set.
func newPGRepos(t *testing.T) repoPair {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repoPair{listings: repo.NewListingRepo(tx), bookings: repo.NewBookingRepo(tx)}
}

// newBoltRepos opens a fresh Bolt file in the test's temp dir.
func newBoltRepos(t *testing.T) repoPair {
	t.Helper()
	db := testutil.NewBoltDB(t)
	return repoPair{listings: repo.NewBoltListingRepo(db), bookings: repo.NewBoltBookingRepo(db)}
}

// backends runs fn once per storage implementation as subtests.
func backends(t *testing.T, fn func(t *testing.T, r repoPair)) {
	t.Run("postgres", func(t *testing.T) { fn(t, newPGRepos(t)) })
	t.Run("bolt", func(t *testing.T) { fn(t, newBoltRepos(t)) })
}

func listingFixture() domain.Listing {
	return domain.Listing{
		OwnerID:     "owner-1",
		Title:       "Sea View Villa",
		Description: "Two bedrooms facing the bay",
		Location:    "Goa",
		Country:     "India",
		Price:       1500000,
		ImageURL:    "https://img.example.com/villa.jpg",
	}
}

func bookingFixture(listingID uuid.UUID, userID string) domain.Booking {
	return domain.Booking{
		ListingID: listingID,
		UserID:    userID,
		CheckIn:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		Guests:    2,
	}
}

// mustCreateListing inserts a listing and fails the test if it cannot.
func mustCreateListing(t *testing.T, r repo.ListingRepo) domain.Listing {
	t.Helper()
	l, err := r.Create(context.Background(), listingFixture())
	require.NoError(t, err, "create listing")
	return l
}
