package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rentaway/internal/domain"
	"github.com/pkordes/rentaway/internal/handler"
)

// ---- POST /listings --------------------------------------------------------

func TestCreateListing_201(t *testing.T) {
	fixture := listingFixture()
	var gotCaller domain.Identity
	var gotListing domain.Listing
	svc := &mockListingServicer{
		create: func(_ context.Context, caller domain.Identity, l domain.Listing) (domain.Listing, error) {
			gotCaller, gotListing = caller, l
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/listings", jsonBody(t, map[string]any{
		"title":    fixture.Title,
		"location": fixture.Location,
		"country":  fixture.Country,
		"price":    fixture.Price,
	}))
	rec := do(t, newHTTPHandler(svc, nil), asUser(req, alice))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp handler.Listing
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	assert.Equal(t, fixture.Title, resp.Title)
	assert.NotNil(t, resp.BookingIDs)

	assert.Equal(t, alice.UserID, gotCaller.UserID)
	assert.Equal(t, fixture.Price, gotListing.Price)
}

func TestCreateListing_401_NoIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/listings", jsonBody(t, map[string]any{"title": "x"}))
	rec := do(t, newHTTPHandler(&mockListingServicer{}, nil), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Code)
}

func TestCreateListing_422_ValidationError(t *testing.T) {
	svc := &mockListingServicer{
		create: func(_ context.Context, _ domain.Identity, _ domain.Listing) (domain.Listing, error) {
			return domain.Listing{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/listings", jsonBody(t, map[string]any{}))
	rec := do(t, newHTTPHandler(svc, nil), asUser(req, alice))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation_error", body.Code)
	assert.Equal(t, "title is required", body.Message)
}

func TestCreateListing_422_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader("{not json"))
	rec := do(t, newHTTPHandler(&mockListingServicer{}, nil), asUser(req, alice))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateListing_500_HidesInternalError(t *testing.T) {
	svc := &mockListingServicer{
		create: func(_ context.Context, _ domain.Identity, _ domain.Listing) (domain.Listing, error) {
			return domain.Listing{}, errors.Join(domain.ErrPersistence, errors.New("connection refused"))
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/listings", jsonBody(t, map[string]any{"title": "x"}))
	rec := do(t, newHTTPHandler(svc, nil), asUser(req, alice))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

// ---- GET /listings ---------------------------------------------------------

func TestListListings_200_WithPagination(t *testing.T) {
	var got domain.PaginationParams
	svc := &mockListingServicer{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
			got = p
			return []domain.Listing{listingFixture(), listingFixture()}, 42, nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), httptest.NewRequest(http.MethodGet, "/listings?page=3&limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 3, Limit: 2}, got)

	var resp handler.ListingPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, handler.Pagination{Page: 3, Limit: 2, Total: 42, Pages: 21}, resp.Pagination)
}

func TestListListings_DefaultsOnBadParams(t *testing.T) {
	var got domain.PaginationParams
	svc := &mockListingServicer{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.Listing, int64, error) {
			got = p
			return []domain.Listing{}, 0, nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), httptest.NewRequest(http.MethodGet, "/listings?page=abc&limit=500", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: 100}, got)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":100,"total":0,"pages":0}}`, rec.Body.String())
}

// ---- GET /listings/search --------------------------------------------------

func TestSearchListings_PassesLocation(t *testing.T) {
	var got string
	svc := &mockListingServicer{
		search: func(_ context.Context, location string) ([]domain.Listing, error) {
			got = location
			return []domain.Listing{listingFixture()}, nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), httptest.NewRequest(http.MethodGet, "/listings/search?location=Lakeside", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lakeside", got)
	var resp handler.ListingList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 1)
}

func TestSearchListings_422_BlankLocation(t *testing.T) {
	svc := &mockListingServicer{
		search: func(_ context.Context, _ string) ([]domain.Listing, error) {
			return nil, fmt.Errorf("%w: location is required", domain.ErrValidation)
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), httptest.NewRequest(http.MethodGet, "/listings/search", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- GET /listings/{id} ----------------------------------------------------

func TestGetListing_200(t *testing.T) {
	fixture := listingFixture()
	fixture.BookingIDs = []uuid.UUID{uuid.New(), uuid.New()}
	svc := &mockListingServicer{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Listing, error) {
			require.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), httptest.NewRequest(http.MethodGet, "/listings/"+fixture.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.Listing
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.BookingIDs, resp.BookingIDs)
}

func TestGetListing_404(t *testing.T) {
	svc := &mockListingServicer{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Listing, error) {
			return domain.Listing{}, fmt.Errorf("repo.pgListingRepo.GetByID: %w", domain.ErrNotFound)
		},
	}

	rec := do(t, newHTTPHandler(svc, nil), httptest.NewRequest(http.MethodGet, "/listings/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "not_found", body.Code)
	assert.Equal(t, "listing not found", body.Message)
}

func TestGetListing_400_InvalidID(t *testing.T) {
	rec := do(t, newHTTPHandler(&mockListingServicer{}, nil), httptest.NewRequest(http.MethodGet, "/listings/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- PUT /listings/{id} ----------------------------------------------------

func TestUpdateListing_200_UsesPathID(t *testing.T) {
	fixture := listingFixture()
	svc := &mockListingServicer{
		update: func(_ context.Context, _ domain.Identity, l domain.Listing) (domain.Listing, error) {
			assert.Equal(t, fixture.ID, l.ID)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/listings/"+fixture.ID.String(), jsonBody(t, map[string]any{"title": "New title"}))
	rec := do(t, newHTTPHandler(svc, nil), asUser(req, alice))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateListing_403_NotOwner(t *testing.T) {
	svc := &mockListingServicer{
		update: func(_ context.Context, _ domain.Identity, _ domain.Listing) (domain.Listing, error) {
			return domain.Listing{}, fmt.Errorf("%w: only the owner may modify this listing", domain.ErrForbidden)
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/listings/"+uuid.NewString(), jsonBody(t, map[string]any{"title": "x"}))
	rec := do(t, newHTTPHandler(svc, nil), asUser(req, alice))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Code)
}

// ---- DELETE /listings/{id} -------------------------------------------------

func TestDeleteListing_204(t *testing.T) {
	svc := &mockListingServicer{
		delete: func(_ context.Context, _ domain.Identity, _ uuid.UUID) error { return nil },
	}

	req := httptest.NewRequest(http.MethodDelete, "/listings/"+uuid.NewString(), nil)
	rec := do(t, newHTTPHandler(svc, nil), asUser(req, alice))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestDeleteListing_409_ActiveBookings(t *testing.T) {
	svc := &mockListingServicer{
		delete: func(_ context.Context, _ domain.Identity, _ uuid.UUID) error {
			return fmt.Errorf("%w: listing has active bookings", domain.ErrConflict)
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/listings/"+uuid.NewString(), nil)
	rec := do(t, newHTTPHandler(svc, nil), asUser(req, alice))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "conflict", body.Code)
	assert.Equal(t, "listing has active bookings", body.Message)
}
