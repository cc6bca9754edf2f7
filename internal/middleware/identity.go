package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkordes/rentaway/internal/domain"
)

// Headers set by the authenticating proxy in front of the API.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

type identityKey struct{}

// Identity copies the caller identity from the proxy headers into the request
// context. Requests without X-User-ID pass through anonymously; handlers that
// need a caller check IdentityFrom.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := domain.Identity{
			UserID:   strings.TrimSpace(r.Header.Get(HeaderUserID)),
			Email:    strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
			Username: strings.TrimSpace(r.Header.Get(HeaderUserName)),
		}
		if !id.IsZero() {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller identity and whether one was supplied.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok && !id.IsZero()
}
