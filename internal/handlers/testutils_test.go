package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/email"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// newTestHandlers wires a Handlers instance onto a sqlmock connection.
// The mailer stays unconfigured so every Send degrades to a logged no-op.
func newTestHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Handlers{DB: db, Mailer: &email.Mailer{}}, mock
}

// newTestRouter builds a bare gin engine that injects the given user ID
// the way AuthMiddleware would.
func newTestRouter(userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	return r
}

// doJSON performs one request with an optional JSON body.
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doJSONWithHeader is doJSON plus one extra request header.
func doJSONWithHeader(t *testing.T, r *gin.Engine, method, path string, body interface{}, headerKey, headerValue string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerKey, headerValue)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// requireJSONError asserts the standard error payload shape.
func requireJSONError(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Contains(t, payload, "error")
}
