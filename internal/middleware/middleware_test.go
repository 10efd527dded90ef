package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("minted", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))

		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
		req.Header.Set(RequestIDHeader, id)

		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, id, seen)
	})

	t.Run("malformed header replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
		req.Header.Set(RequestIDHeader, "<script>")

		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.NotEqual(t, "<script>", seen)
	})
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := RequestID(AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalog/authors", http.StatusSeeOther)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/catalog/author/create", nil))

	out := buf.String()
	assert.Contains(t, out, "request_method=POST")
	assert.Contains(t, out, "request_url=/catalog/author/create")
	assert.Contains(t, out, "status=303")
	assert.Contains(t, out, "request_id=")
}

func TestRecoverPanic(t *testing.T) {
	var got error
	h := RecoverPanic(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusInternalServerError)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("template exploded")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "close", w.Header().Get("Connection"))
	require.Error(t, got)
	assert.Equal(t, "template exploded", got.Error())
}

func TestRateLimiter(t *testing.T) {
	t.Run("burst then reject per ip", func(t *testing.T) {
		l := NewRateLimiter(1, 2)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow("10.0.0.1"))
		assert.True(t, l.Allow("10.0.0.1"))
		assert.False(t, l.Allow("10.0.0.1"))
		assert.True(t, l.Allow("10.0.0.2"))

		now = now.Add(time.Second)
		assert.True(t, l.Allow("10.0.0.1"))
	})

	t.Run("idle clients are forgotten", func(t *testing.T) {
		l := NewRateLimiter(1, 1)
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		l.Allow("10.0.0.1")
		now = now.Add(clientTTL + 2*time.Minute)
		l.Allow("10.0.0.2")

		l.mu.Lock()
		defer l.mu.Unlock()
		assert.NotContains(t, l.clients, "10.0.0.1")
		assert.Contains(t, l.clients, "10.0.0.2")
	})

	t.Run("handler answers 429", func(t *testing.T) {
		l := NewRateLimiter(0, 0)
		h := l.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}
