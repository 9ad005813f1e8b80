package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- Supplier EPI Handlers ---
//
// The five profile sections are stored as independent JSON rows in
// supplier_epi_sections so partial completion survives across sessions.
// Completeness is derived from which rows exist, never stored as a flag.
//

// loadEpiProfile merges the section rows into one profile. Missing
// sections stay zero-valued so the client never has to null-check.
func (h *Handlers) loadEpiProfile(supplierID int64) (*models.EpiProfile, error) {
	profile := &models.EpiProfile{
		SupplierID:    supplierID,
		SavedSections: []string{},
	}

	rows, err := h.DB.Query(
		"SELECT section, data, updated_at FROM supplier_epi_sections WHERE supplier_id = ?",
		supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var section, data string
		var updatedAt time.Time
		if err := rows.Scan(&section, &data, &updatedAt); err != nil {
			return nil, err
		}

		switch section {
		case models.EpiSectionGeneral:
			if err := json.Unmarshal([]byte(data), &profile.General); err != nil {
				return nil, fmt.Errorf("failed to decode %s section: %w", section, err)
			}
		case models.EpiSectionOperations:
			if err := json.Unmarshal([]byte(data), &profile.Operations); err != nil {
				return nil, fmt.Errorf("failed to decode %s section: %w", section, err)
			}
		case models.EpiSectionBankingSystems:
			if err := json.Unmarshal([]byte(data), &profile.BankingSystems); err != nil {
				return nil, fmt.Errorf("failed to decode %s section: %w", section, err)
			}
		case models.EpiSectionQuestionnaire:
			if err := json.Unmarshal([]byte(data), &profile.Questionnaire); err != nil {
				return nil, fmt.Errorf("failed to decode %s section: %w", section, err)
			}
		case models.EpiSectionChecklist:
			if err := json.Unmarshal([]byte(data), &profile.Checklist); err != nil {
				return nil, fmt.Errorf("failed to decode %s section: %w", section, err)
			}
		default:
			// Unknown section rows are ignored rather than fatal.
			continue
		}

		profile.SavedSections = append(profile.SavedSections, section)
		if profile.UpdatedAt == nil || updatedAt.After(*profile.UpdatedAt) {
			t := updatedAt
			profile.UpdatedAt = &t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Legacy rows store evidence as storage paths instead of absolute
	// URLs; resolve them at read time, never write the result back.
	for i := range profile.Checklist.Items {
		profile.Checklist.Items[i].FileURL = ResolveEvidenceURL(profile.Checklist.Items[i].FileURL)
	}

	profile.Progress = len(profile.SavedSections) * 100 / len(models.EpiSectionNames)
	profile.IsComplete = len(profile.SavedSections) == len(models.EpiSectionNames)
	return profile, nil
}

// ResolveEvidenceURL converts a stored evidence reference into a
// fetchable URL. Absolute URLs pass through; legacy storage paths are
// rebased onto the public uploads root.
func ResolveEvidenceURL(stored string) string {
	if stored == "" {
		return ""
	}
	if strings.HasPrefix(stored, "http://") || strings.HasPrefix(stored, "https://") {
		return stored
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/uploads/%s", baseURL, strings.TrimPrefix(stored, "/"))
}

// GetMyEpi is the handler for GET /v1/supplier/epi
func (h *Handlers) GetMyEpi(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	supplierID := userIDRaw.(int64)

	profile, err := h.loadEpiProfile(supplierID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load EPI profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"epi": profile})
}

// GetSupplierEpi is the handler for GET /v1/manager/suppliers/:id/epi
// The manager audit view of a supplier's profile.
func (h *Handlers) GetSupplierEpi(c *gin.Context) {
	supplierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid supplier id"})
		return
	}

	// Confirm the target actually is a supplier account.
	var role string
	err = h.DB.QueryRow("SELECT role FROM users WHERE id = ?", supplierID).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if role != models.RoleSupplier {
		c.JSON(http.StatusNotFound, gin.H{"error": "Supplier not found"})
		return
	}

	profile, err := h.loadEpiProfile(supplierID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load EPI profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"epi": profile})
}

// SaveEpiInput carries all five sections. Sections are upserted one by
// one with merge semantics; a failure partway leaves earlier sections
// saved, which matches the progressive-save wizard UX.
type SaveEpiInput struct {
	General        models.EpiGeneral        `json:"general"`
	Operations     models.EpiOperations     `json:"operations"`
	BankingSystems models.EpiBankingSystems `json:"bankingSystems"`
	Questionnaire  models.EpiQuestionnaire  `json:"questionnaire"`
	Checklist      models.EpiChecklist      `json:"checklist"`
}

// SaveMyEpi is the handler for PUT /v1/supplier/epi
func (h *Handlers) SaveMyEpi(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	supplierID := userIDRaw.(int64)

	var input SaveEpiInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sections := []struct {
		name string
		data interface{}
	}{
		{models.EpiSectionGeneral, input.General},
		{models.EpiSectionOperations, input.Operations},
		{models.EpiSectionBankingSystems, input.BankingSystems},
		{models.EpiSectionQuestionnaire, input.Questionnaire},
		{models.EpiSectionChecklist, input.Checklist},
	}

	// Deliberately no transaction across sections: each save is an
	// independent upsert, and a later failure must not undo earlier ones.
	now := time.Now()
	for _, s := range sections {
		payload, err := json.Marshal(s.data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode section " + s.name})
			return
		}
		_, err = h.DB.Exec(`
			INSERT INTO supplier_epi_sections (supplier_id, section, data, updated_at)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = VALUES(updated_at)`,
			supplierID, s.name, string(payload), now)
		if err != nil {
			// Abort the remaining sections and surface the first failure.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save section " + s.name})
			return
		}
	}

	// Recompute the summary mirrored on the users row.
	var saved int
	if err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM supplier_epi_sections WHERE supplier_id = ?", supplierID).
		Scan(&saved); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute EPI progress"})
		return
	}

	progress := saved * 100 / len(models.EpiSectionNames)
	score := questionnaireScore(input.Questionnaire)
	complete := saved == len(models.EpiSectionNames)

	query := "UPDATE users SET epi_progress = ?, epi_score = ?, updated_at = ?"
	args := []interface{}{progress, score, now}
	if complete {
		query += ", supplier_status = 'evaluated'"
	}
	query += " WHERE id = ?"
	args = append(args, supplierID)
	if _, err := h.DB.Exec(query, args...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update supplier summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "EPI profile saved",
		"progress":   progress,
		"isComplete": complete,
	})
}

// questionnaireScore averages the answered question scores (0 when the
// questionnaire is still empty).
func questionnaireScore(q models.EpiQuestionnaire) float64 {
	if len(q.Answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range q.Answers {
		total += a.Score
	}
	return float64(total) / float64(len(q.Answers))
}

// UploadEvidence is the handler for POST /v1/supplier/epi/evidence
// Stores one checklist evidence file and returns its public URL; the
// client writes the URL back onto the specific checklist item.
func (h *Handlers) UploadEvidence(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	uploadPath := "./uploads/supplier_evidence"
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload directory"})
		return
	}

	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	savePath := filepath.Join(uploadPath, newFilename)

	if err := c.SaveUploadedFile(file, savePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      ResolveEvidenceURL("supplier_evidence/" + newFilename),
		"fileName": file.Filename,
	})
}
