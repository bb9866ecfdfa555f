package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func loggedHandler() (*bytes.Buffer, http.Handler) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return buf, h
}

func TestRequestLogger(t *testing.T) {
	t.Run("plain requests log as http request", func(t *testing.T) {
		buf, h := loggedHandler()

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

		assert.Contains(t, buf.String(), `"msg":"http request"`)
	})

	t.Run("upgrade requests log as websocket session", func(t *testing.T) {
		buf, h := loggedHandler()

		r := httptest.NewRequest("GET", "/api/v1/ws", nil)
		r.Header.Set("Upgrade", "websocket")
		h.ServeHTTP(httptest.NewRecorder(), r)

		assert.Contains(t, buf.String(), `"msg":"websocket session"`)
	})

	t.Run("handshake token never reaches the log", func(t *testing.T) {
		buf, h := loggedHandler()

		r := httptest.NewRequest("GET", "/api/v1/ws?token=super-secret-jwt&foo=bar", nil)
		r.Header.Set("Upgrade", "websocket")
		h.ServeHTTP(httptest.NewRecorder(), r)

		out := buf.String()
		assert.NotContains(t, out, "super-secret-jwt")
		assert.Contains(t, out, "REDACTED")
		assert.Contains(t, out, "foo=bar")
	})
}
