package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestAssignInitialRoleWithoutAttestation(t *testing.T) {
	t.Setenv("APP_CHECK_SECRET", "integrity-secret")

	h, mock := newTestHandlers(t)
	r := newTestRouter(7)
	r.POST("/auth/assign-role", h.AssignInitialRole)

	// No X-App-Check header at all: fail closed before any DB work.
	w := doJSON(t, r, http.MethodPost, "/auth/assign-role", map[string]string{"role": "proveedor"})
	require.Equal(t, http.StatusPreconditionFailed, w.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "failed-precondition", payload["code"])

	require.NoError(t, mock.ExpectationsWereMet()) // zero expectations: no writes happened
}

func TestAssignInitialRoleHappyPath(t *testing.T) {
	t.Setenv("APP_CHECK_SECRET", "integrity-secret")

	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT role FROM users WHERE id = .+ FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(""))
	mock.ExpectExec("UPDATE users SET role = ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	r := newTestRouter(7)
	r.POST("/auth/assign-role", h.AssignInitialRole)

	w := doJSONWithHeader(t, r, http.MethodPost, "/auth/assign-role",
		map[string]string{"role": "proveedor"}, "X-App-Check", "integrity-secret")
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignInitialRoleAlreadyAssigned(t *testing.T) {
	t.Setenv("APP_CHECK_SECRET", "integrity-secret")

	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT role FROM users WHERE id = .+ FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("gestor"))
	mock.ExpectRollback()

	r := newTestRouter(7)
	r.POST("/auth/assign-role", h.AssignInitialRole)

	w := doJSONWithHeader(t, r, http.MethodPost, "/auth/assign-role",
		map[string]string{"role": "proveedor"}, "X-App-Check", "integrity-secret")
	requireJSONError(t, w, http.StatusConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignInitialRoleRejectsUnknownRole(t *testing.T) {
	t.Setenv("APP_CHECK_SECRET", "integrity-secret")

	h, mock := newTestHandlers(t)
	r := newTestRouter(7)
	r.POST("/auth/assign-role", h.AssignInitialRole)

	w := doJSONWithHeader(t, r, http.MethodPost, "/auth/assign-role",
		map[string]string{"role": "superadmin"}, "X-App-Check", "integrity-secret")
	requireJSONError(t, w, http.StatusBadRequest)

	require.NoError(t, mock.ExpectationsWereMet())
}
