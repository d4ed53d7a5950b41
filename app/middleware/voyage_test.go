package appMiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoyageIdentity(t *testing.T) {
	var captured uuid.UUID
	var ok bool
	handler := VoyageIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, ok = GetVoyageUIDFromContext(r.Context())
	}))

	t.Run("valid header is passed through and echoed", func(t *testing.T) {
		uid := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(VoyageHeader, uid.String())
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.True(t, ok)
		assert.Equal(t, uid, captured)
		assert.Equal(t, uid.String(), rec.Header().Get(VoyageHeader))
	})

	t.Run("missing header mints a fresh UID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.True(t, ok)
		assert.NotEqual(t, uuid.Nil, captured)
		assert.Equal(t, captured.String(), rec.Header().Get(VoyageHeader))
	})

	t.Run("malformed header is replaced, never rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(VoyageHeader, "not-a-uuid")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.True(t, ok)
		assert.NotEqual(t, "not-a-uuid", rec.Header().Get(VoyageHeader))
	})
}

func TestGetVoyageUIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetVoyageUIDFromContext(req.Context())
	assert.False(t, ok)
}
