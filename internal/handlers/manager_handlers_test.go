package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestGetRequestsByStatusFindsLegacyRows(t *testing.T) {
	h, mock := newTestHandlers(t)

	// Listing by the canonical status must also bind the legacy
	// spelling, or rows still stored as 'adjudicado' become invisible.
	mock.ExpectQuery("FROM requests WHERE status IN ").
		WithArgs("awarded", "adjudicado").
		WillReturnRows(requestRow(42, "adjudicado", 7, 1))

	r := newTestRouter(99)
	r.GET("/manager/requests/status/:status", h.GetRequestsByStatus)

	w := doJSON(t, r, http.MethodGet, "/manager/requests/status/awarded", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Requests []struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Requests, 1)
	require.Equal(t, int64(42), payload.Requests[0].ID)
	require.Equal(t, "awarded", payload.Requests[0].Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRequestStatusRefusesAwardTarget(t *testing.T) {
	h, mock := newTestHandlers(t)

	r := newTestRouter(99)
	r.PATCH("/manager/requests/:id/status", h.UpdateRequestStatus)

	// Awarding needs winner bookkeeping, so the generic endpoint
	// refuses it (legacy spelling included) before touching the DB.
	for _, target := range []string{"awarded", "adjudicado", "completed"} {
		w := doJSON(t, r, http.MethodPatch, "/manager/requests/42/status",
			map[string]interface{}{"status": target})
		requireJSONError(t, w, http.StatusBadRequest)
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteSuppliersHappyPath(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM requests WHERE id = .+ FOR UPDATE").
		WillReturnRows(requestRow(42, "in_progress", 7, 1))
	mock.ExpectExec("UPDATE requests SET status = ").
		WillReturnResult(sqlmock.NewResult(0, 1))

	for _, s := range []struct {
		id    int64
		name  string
		email string
	}{
		{5, "Aceros SA", "ventas@aceros.example"},
		{6, "Metales del Norte", "contacto@metales.example"},
	} {
		mock.ExpectQuery("FROM users WHERE id = .+ AND role = ").
			WithArgs(s.id, "proveedor").
			WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email"}).
				AddRow(s.id, s.name, s.email))
		mock.ExpectExec("INSERT INTO quotation_invitations").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO notifications").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	r := newTestRouter(99)
	r.POST("/manager/requests/:id/invite", h.InviteSuppliers)

	w := doJSON(t, r, http.MethodPost, "/manager/requests/42/invite",
		map[string]interface{}{
			"supplierIds": []int64{5, 6},
			"dueDate":     "2026-09-15T00:00:00Z",
			"message":     "Please quote by mid-September",
			"version":     1,
		})
	require.Equal(t, http.StatusCreated, w.Code)

	var payload struct {
		Invited int `json:"invited"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, 2, payload.Invited)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteSuppliersRejectsNonSupplier(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM requests WHERE id = .+ FOR UPDATE").
		WillReturnRows(requestRow(42, "in_progress", 7, 1))
	mock.ExpectExec("UPDATE requests SET status = ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The invitee is not a supplier account: the whole invite rolls back.
	mock.ExpectQuery("FROM users WHERE id = .+ AND role = ").
		WithArgs(int64(8), "proveedor").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	r := newTestRouter(99)
	r.POST("/manager/requests/:id/invite", h.InviteSuppliers)

	w := doJSON(t, r, http.MethodPost, "/manager/requests/42/invite",
		map[string]interface{}{
			"supplierIds": []int64{8},
			"dueDate":     "2026-09-15T00:00:00Z",
		})
	requireJSONError(t, w, http.StatusBadRequest)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardRequestHappyPath(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM quotations q JOIN users u").
		WithArgs(int64(9), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"supplier_id", "amount", "full_name", "email"}).
			AddRow(5, 1200.50, "Aceros SA", "ventas@aceros.example"))
	mock.ExpectQuery("FROM requests WHERE id = .+ FOR UPDATE").
		WillReturnRows(requestRow(42, "quoting", 7, 3))
	mock.ExpectExec("UPDATE requests SET status = ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE quotations SET status = 'winner'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE quotations SET status = 'not_selected'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1)) // winner
	mock.ExpectQuery("SELECT supplier_id FROM quotations WHERE request_id = ").
		WillReturnRows(sqlmock.NewRows([]string{"supplier_id"}).AddRow(6))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(2, 1)) // loser
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(3, 1)) // requester
	mock.ExpectCommit()

	r := newTestRouter(99)
	r.POST("/manager/requests/:id/award", h.AwardRequest)

	w := doJSON(t, r, http.MethodPost, "/manager/requests/42/award",
		map[string]interface{}{"quotationId": 9, "version": 3})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardRequestUnknownQuotation(t *testing.T) {
	h, mock := newTestHandlers(t)

	// The quotation must belong to this request; anything else is 404.
	mock.ExpectBegin()
	mock.ExpectQuery("FROM quotations q JOIN users u").
		WithArgs(int64(9), int64(42)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	r := newTestRouter(99)
	r.POST("/manager/requests/:id/award", h.AwardRequest)

	w := doJSON(t, r, http.MethodPost, "/manager/requests/42/award",
		map[string]interface{}{"quotationId": 9})
	requireJSONError(t, w, http.StatusNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
