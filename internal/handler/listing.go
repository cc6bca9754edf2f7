package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/rentaway/internal/domain"
)

// ListingRequest is the body of POST /listings and PUT /listings/{id}.
type ListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Country     string `json:"country"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
}

// Listing is the JSON representation of a listing.
type Listing struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     string      `json:"owner_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Country     string      `json:"country"`
	Price       int64       `json:"price"`
	ImageURL    string      `json:"image_url,omitempty"`
	BookingIDs  []uuid.UUID `json:"booking_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListingPage is the body of GET /listings.
type ListingPage struct {
	Data       []Listing  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ListingList is the body of GET /listings/search.
type ListingList struct {
	Data []Listing `json:"data"`
}

// CreateListing handles POST /listings.
func (s *Server) CreateListing(w http.ResponseWriter, r *http.Request) {
	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req ListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := s.listings.Create(r.Context(), who, requestToListing(uuid.Nil, req))
	if err != nil {
		s.fail(w, r, err, "listing")
		return
	}
	writeJSON(w, http.StatusCreated, listingToResponse(created))
}

// ListListings handles GET /listings.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListListings(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	listings, total, err := s.listings.ListPaged(r.Context(), params)
	if err != nil {
		s.fail(w, r, err, "listing")
		return
	}
	writeJSON(w, http.StatusOK, ListingPage{
		Data: listingsToResponse(listings),
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
			Pages: params.Pages(total),
		},
	})
}

// SearchListings handles GET /listings/search?location=.
func (s *Server) SearchListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.listings.Search(r.Context(), r.URL.Query().Get("location"))
	if err != nil {
		s.fail(w, r, err, "listing")
		return
	}
	writeJSON(w, http.StatusOK, ListingList{Data: listingsToResponse(listings)})
}

// GetListing handles GET /listings/{id}.
func (s *Server) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	l, err := s.listings.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "listing")
		return
	}
	writeJSON(w, http.StatusOK, listingToResponse(l))
}

// UpdateListing handles PUT /listings/{id}. Only the owner may update.
func (s *Server) UpdateListing(w http.ResponseWriter, r *http.Request) {
	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	var req ListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := s.listings.Update(r.Context(), who, requestToListing(id, req))
	if err != nil {
		s.fail(w, r, err, "listing")
		return
	}
	writeJSON(w, http.StatusOK, listingToResponse(updated))
}

// DeleteListing handles DELETE /listings/{id}.
func (s *Server) DeleteListing(w http.ResponseWriter, r *http.Request) {
	who, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	if err := s.listings.Delete(r.Context(), who, id); err != nil {
		s.fail(w, r, err, "listing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- mapping helpers -------------------------------------------------------

func requestToListing(id uuid.UUID, req ListingRequest) domain.Listing {
	return domain.Listing{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Country:     req.Country,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}
}

func listingToResponse(l domain.Listing) Listing {
	ids := l.BookingIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return Listing{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Country:     l.Country,
		Price:       l.Price,
		ImageURL:    l.ImageURL,
		BookingIDs:  ids,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func listingsToResponse(ls []domain.Listing) []Listing {
	data := make([]Listing, len(ls))
	for i, l := range ls {
		data[i] = listingToResponse(l)
	}
	return data
}

// queryInt returns the named query parameter as an int, or nil if it is
// absent or not a number. NewPaginationParams applies the defaults.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
