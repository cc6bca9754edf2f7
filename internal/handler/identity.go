package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/rentaway/internal/domain"
	"github.com/pkordes/rentaway/internal/middleware"
)

// requireIdentity returns the caller or answers 401 itself.
func requireIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	who, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return domain.Identity{}, false
	}
	return who, true
}

// listingID parses the {id} path parameter or answers 400 itself.
func listingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid listing id")
		return uuid.Nil, false
	}
	return id, true
}
