package appMiddleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const VoyageUIDKey contextKey = "voyageUID"

// VoyageHeader carries the anonymous traveler identity. There are no accounts;
// the client stores a UUID locally and sends it on every request. When the
// header is missing or malformed a fresh UUID is minted for the request, so
// the client can pick it up from the response and keep it. Trips created
// before the client started sending the header stay ownerless and can be
// adopted later.
const VoyageHeader = "X-Voyage-UID"

// VoyageIdentity resolves the voyage header into the request context and
// echoes the effective UID back on the response. It never rejects a request.
func VoyageIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := uuid.Parse(r.Header.Get(VoyageHeader))
		if err != nil {
			uid = uuid.New()
		}
		w.Header().Set(VoyageHeader, uid.String())
		ctx := context.WithValue(r.Context(), VoyageUIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetVoyageUIDFromContext returns the parsed voyage UID, if the request
// carried one.
func GetVoyageUIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	uid, ok := ctx.Value(VoyageUIDKey).(uuid.UUID)
	return uid, ok
}
