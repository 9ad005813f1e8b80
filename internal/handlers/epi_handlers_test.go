package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/models"
)

func TestResolveEvidenceURL(t *testing.T) {
	t.Setenv("BASE_URL", "https://files.example.com")

	// Absolute URLs pass through untouched.
	require.Equal(t, "https://cdn.example.com/doc.pdf",
		ResolveEvidenceURL("https://cdn.example.com/doc.pdf"))
	require.Equal(t, "http://cdn.example.com/doc.pdf",
		ResolveEvidenceURL("http://cdn.example.com/doc.pdf"))

	// Legacy storage paths are rebased onto the uploads root.
	require.Equal(t, "https://files.example.com/uploads/supplier_evidence/a.pdf",
		ResolveEvidenceURL("supplier_evidence/a.pdf"))
	require.Equal(t, "https://files.example.com/uploads/supplier_evidence/a.pdf",
		ResolveEvidenceURL("/supplier_evidence/a.pdf"))

	require.Equal(t, "", ResolveEvidenceURL(""))
}

func TestQuestionnaireScore(t *testing.T) {
	require.Equal(t, float64(0), questionnaireScore(models.EpiQuestionnaire{}))

	q := models.EpiQuestionnaire{Answers: []models.EpiQuestionnaireAnswer{
		{QuestionID: "q1", Score: 4},
		{QuestionID: "q2", Score: 2},
		{QuestionID: "q3", Score: 3},
	}}
	require.InDelta(t, 3.0, questionnaireScore(q), 0.001)
}

func TestGetMyEpiMergesSections(t *testing.T) {
	t.Setenv("BASE_URL", "https://files.example.com")
	h, mock := newTestHandlers(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"section", "data", "updated_at"}).
		AddRow("general", `{"legalName":"Aceros SA","taxId":"AAA010101"}`, now).
		AddRow("operations", `{"employeeCount":120,"leadTimeDays":14}`, now).
		AddRow("banking_systems", `{"bankName":"BBVA","currency":"MXN"}`, now).
		AddRow("questionnaire", `{"answers":[{"questionId":"q1","score":5}]}`, now).
		AddRow("checklist", `{"items":[{"id":"c1","label":"Tax certificate","checked":true,"fileUrl":"supplier_evidence/tax.pdf"}]}`, now)
	mock.ExpectQuery("FROM supplier_epi_sections WHERE supplier_id = ").
		WithArgs(int64(5)).
		WillReturnRows(rows)

	r := newTestRouter(5)
	r.GET("/supplier/epi", h.GetMyEpi)

	w := doJSON(t, r, http.MethodGet, "/supplier/epi", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Epi models.EpiProfile `json:"epi"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))

	require.Equal(t, int64(5), payload.Epi.SupplierID)
	require.Equal(t, "Aceros SA", payload.Epi.General.LegalName)
	require.Equal(t, 120, payload.Epi.Operations.EmployeeCount)
	require.Equal(t, "BBVA", payload.Epi.BankingSystems.BankName)
	require.Len(t, payload.Epi.SavedSections, 5)
	require.Equal(t, 100, payload.Epi.Progress)
	require.True(t, payload.Epi.IsComplete)

	// Legacy evidence path resolved to an absolute URL at read time.
	require.Len(t, payload.Epi.Checklist.Items, 1)
	require.Equal(t, "https://files.example.com/uploads/supplier_evidence/tax.pdf",
		payload.Epi.Checklist.Items[0].FileURL)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMyEpiEmptyProfile(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("FROM supplier_epi_sections WHERE supplier_id = ").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"section", "data", "updated_at"}))

	r := newTestRouter(5)
	r.GET("/supplier/epi", h.GetMyEpi)

	w := doJSON(t, r, http.MethodGet, "/supplier/epi", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Epi models.EpiProfile `json:"epi"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, 0, payload.Epi.Progress)
	require.False(t, payload.Epi.IsComplete)
	require.Empty(t, payload.Epi.SavedSections)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSupplierEpiRejectsNonSupplier(t *testing.T) {
	h, mock := newTestHandlers(t)

	mock.ExpectQuery("SELECT role FROM users WHERE id = ").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("gestor"))

	r := newTestRouter(99)
	r.GET("/manager/suppliers/:id/epi", h.GetSupplierEpi)

	w := doJSON(t, r, http.MethodGet, "/manager/suppliers/12/epi", nil)
	requireJSONError(t, w, http.StatusNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMyEpiUpsertsEverySection(t *testing.T) {
	h, mock := newTestHandlers(t)

	for range models.EpiSectionNames {
		mock.ExpectExec("INSERT INTO supplier_epi_sections").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM supplier_epi_sections").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec("UPDATE users SET epi_progress = ").
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := newTestRouter(5)
	r.PUT("/supplier/epi", h.SaveMyEpi)

	body := map[string]interface{}{
		"general":       map[string]interface{}{"legalName": "Aceros SA"},
		"questionnaire": map[string]interface{}{"answers": []map[string]interface{}{{"questionId": "q1", "score": 4}}},
	}
	w := doJSON(t, r, http.MethodPut, "/supplier/epi", body)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Progress   int  `json:"progress"`
		IsComplete bool `json:"isComplete"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, 100, payload.Progress)
	require.True(t, payload.IsComplete)

	require.NoError(t, mock.ExpectationsWereMet())
}
