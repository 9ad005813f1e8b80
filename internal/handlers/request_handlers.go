package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/email"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/lifecycle"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Request Handlers ---
//

// errVersionConflict signals a stale compare-and-swap write.
// Handlers surface it as 409 so clients can reload and retry.
var errVersionConflict = errors.New("request was modified by someone else")

// requestColumns is the shared SELECT list for full request rows.
const requestColumns = `
	id, code, status, title, description, project_type, search_class, urgency,
	due_date, department, requester_id, requester_name, requester_email,
	required_business_type, required_categories, required_tags, custom_tags,
	attachments, reviewed_by, reviewed_at, rectification_comment, completed_at,
	received_at, received_confirmed_by, winner_quotation_id, actual_cost,
	version, created_at, updated_at`

// rowScanner lets scanRequest work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRequest reads one full request row, decodes the JSON columns and
// normalizes legacy status spellings in the one place they can appear.
func scanRequest(row rowScanner) (*models.Request, error) {
	var req models.Request
	var rawStatus string
	var categories, tags, custom, attachments sql.NullString

	err := row.Scan(
		&req.ID, &req.Code, &rawStatus, &req.Title, &req.Description,
		&req.ProjectType, &req.SearchClass, &req.Urgency,
		&req.DueDate, &req.Department, &req.RequesterID, &req.RequesterName,
		&req.RequesterEmail, &req.RequiredBusinessType,
		&categories, &tags, &custom, &attachments,
		&req.ReviewedBy, &req.ReviewedAt, &req.RectificationComment,
		&req.CompletedAt, &req.ReceivedAt, &req.ReceivedConfirmedBy,
		&req.WinnerQuotationID, &req.ActualCost,
		&req.Version, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = string(lifecycle.Normalize(rawStatus))

	// JSON columns default to empty slices so list views never see null.
	req.RequiredCategories = decodeStringList(categories)
	req.RequiredTags = decodeStringList(tags)
	req.CustomTags = decodeStringList(custom)
	req.Attachments = []models.Attachment{}
	if attachments.Valid && attachments.String != "" {
		_ = json.Unmarshal([]byte(attachments.String), &req.Attachments)
	}

	req.RelativeTime = lifecycle.RelativeTime(req.CreatedAt, time.Now())
	return &req, nil
}

func decodeStringList(col sql.NullString) []string {
	out := []string{}
	if col.Valid && col.String != "" {
		_ = json.Unmarshal([]byte(col.String), &out)
	}
	return out
}

func encodeJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// CreateRequestInput is the payload for POST /v1/requests
type CreateRequestInput struct {
	Title                string              `json:"title" binding:"required"`
	Description          string              `json:"description" binding:"required"`
	ProjectType          string              `json:"projectType" binding:"required"`
	SearchClass          string              `json:"searchClass" binding:"required"`
	Urgency              string              `json:"urgency" binding:"required,oneof=low medium high"`
	DueDate              *time.Time          `json:"dueDate,omitempty"`
	Department           string              `json:"department"`
	RequiredBusinessType string              `json:"requiredBusinessType"`
	RequiredCategories   []string            `json:"requiredCategories"`
	RequiredTags         []string            `json:"requiredTags"`
	CustomTags           []string            `json:"customTags"`
	Attachments          []models.Attachment `json:"attachments"`
}

// CreateRequest is the handler for POST /v1/requests
// It creates the request with status 'pending', then notifies every
// active manager plus a confirmation back to the requester.
func (h *Handlers) CreateRequest(c *gin.Context) {
	// 1. --- Get Requester ---
	userIDRaw, _ := c.Get("userID")
	requesterID := userIDRaw.(int64)

	var input CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var requesterName, requesterEmail string
	err := h.DB.QueryRow("SELECT full_name, email FROM users WHERE id = ?", requesterID).
		Scan(&requesterName, &requesterEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load requester profile"})
		return
	}

	// 2. --- Begin Transaction ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 3. --- Insert Request ---
	now := time.Now()
	code := lifecycle.GenerateRequestCode(now)
	query := `
		INSERT INTO requests
		(code, status, title, description, project_type, search_class, urgency,
		 due_date, department, requester_id, requester_name, requester_email,
		 required_business_type, required_categories, required_tags, custom_tags,
		 attachments, version, created_at, updated_at)
		VALUES (?, 'pending', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`

	result, err := tx.Exec(query,
		code, input.Title, input.Description, input.ProjectType, input.SearchClass,
		input.Urgency, input.DueDate, input.Department,
		requesterID, requesterName, requesterEmail,
		input.RequiredBusinessType,
		encodeJSON(input.RequiredCategories), encodeJSON(input.RequiredTags),
		encodeJSON(input.CustomTags), encodeJSON(input.Attachments),
		now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		return
	}
	requestID, _ := result.LastInsertId()

	// 4. --- Notify Managers + Requester (inside the tx) ---
	managers, err := h.activeManagers(tx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load managers"})
		return
	}
	for _, m := range managers {
		msg := requesterName + " submitted request " + code + ": " + input.Title
		if err := h.AddNotification(tx, m.ID, models.NotifNewRequest, "New purchasing request", msg, requestID, "request"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notifications"})
			return
		}
	}
	selfMsg := "Your request " + code + " was created and is pending review"
	if err := h.AddNotification(tx, requesterID, models.NotifRequestCreated, "Request received", selfMsg, requestID, "request"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notifications"})
		return
	}

	// 5. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	// 6. --- Best-Effort Emails (after commit) ---
	for _, m := range managers {
		subject, body := email.NewRequestEmail(m.Name, requesterName, code, input.Title)
		h.Mailer.Send(m.Email, subject, body)
	}
	subject, body := email.RequestCreatedEmail(requesterName, code, input.Title)
	h.Mailer.Send(requesterEmail, subject, body)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Request created successfully",
		"id":      requestID,
		"code":    code,
		"status":  string(lifecycle.StatusPending),
	})
}

// managerContact is a small projection used for notification fan-out.
type managerContact struct {
	ID    int64
	Name  string
	Email string
}

// activeManagers lists every active user holding the manager role.
func (h *Handlers) activeManagers(tx *sql.Tx) ([]managerContact, error) {
	rows, err := tx.Query("SELECT id, full_name, email FROM users WHERE role = ? AND status = 'active'", models.RoleManager)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []managerContact
	for rows.Next() {
		var m managerContact
		if err := rows.Scan(&m.ID, &m.Name, &m.Email); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetRequestByID is the handler for GET /v1/requests/:id
// Not-found is a normal outcome for read paths; it maps to 404 here.
func (h *Handlers) GetRequestByID(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	req, err := scanRequest(h.DB.QueryRow("SELECT"+requestColumns+" FROM requests WHERE id = ?", requestID))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": req})
}

// listRequests runs a request query and streams the rows into a slice.
func (h *Handlers) listRequests(c *gin.Context, query string, args ...interface{}) ([]*models.Request, bool) {
	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return nil, false
	}
	defer rows.Close()

	requests := []*models.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan request row"})
			return nil, false
		}
		requests = append(requests, req)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating request rows"})
		return nil, false
	}
	return requests, true
}

// GetMyRequests is the handler for GET /v1/requests/my (newest first).
func (h *Handlers) GetMyRequests(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	requesterID := userIDRaw.(int64)

	requests, ok := h.listRequests(c,
		"SELECT"+requestColumns+" FROM requests WHERE requester_id = ? ORDER BY created_at DESC",
		requesterID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// transitionOptions carries the side-field stamps for one status change.
type transitionOptions struct {
	actorID         int64 // stamps reviewed_by/reviewed_at when set
	comment         string
	expectedVersion int   // non-zero: compare-and-swap against this version
	receivedBy      int64 // non-zero: stamp received_at/received_confirmed_by
	winnerQuotation int64 // non-zero: set winner_quotation_id
	actualCost      *float64
}

// transitionRequest is the single write path for request statuses. It
// locks the row, validates the edge against the workflow graph, checks
// the version for stale concurrent edits, then applies the update with
// the appropriate timestamps. Every caller runs inside a transaction so
// notifications commit atomically with the status change.
func (h *Handlers) transitionRequest(tx *sql.Tx, requestID int64, target lifecycle.Status, opt transitionOptions) (*models.Request, error) {
	// 1. --- Lock & Load ---
	req, err := scanRequest(tx.QueryRow("SELECT"+requestColumns+" FROM requests WHERE id = ? FOR UPDATE", requestID))
	if err != nil {
		return nil, err
	}

	// 2. --- Guard the Edge ---
	if err := lifecycle.Transition(lifecycle.Status(req.Status), target); err != nil {
		return nil, err
	}

	// 3. --- Optimistic Concurrency Check ---
	if opt.expectedVersion != 0 && opt.expectedVersion != req.Version {
		return nil, errVersionConflict
	}

	// 4. --- Apply the Update ---
	now := time.Now()
	query := "UPDATE requests SET status = ?, updated_at = ?, version = version + 1"
	args := []interface{}{string(target), now}

	if opt.actorID != 0 {
		query += ", reviewed_by = ?, reviewed_at = ?"
		args = append(args, opt.actorID, now)
	}
	// Rectification requests and non-compliance reports both carry a
	// reason the audit view must be able to show.
	if opt.comment != "" &&
		(target == lifecycle.StatusRectificationRequired || target == lifecycle.StatusReopenedNoncompliance) {
		query += ", rectification_comment = ?"
		args = append(args, opt.comment)
	}
	if target == lifecycle.StatusCompleted {
		query += ", completed_at = ?"
		args = append(args, now)
	}
	if opt.receivedBy != 0 {
		query += ", received_at = ?, received_confirmed_by = ?"
		args = append(args, now, opt.receivedBy)
	}
	if opt.winnerQuotation != 0 {
		query += ", winner_quotation_id = ?"
		args = append(args, opt.winnerQuotation)
	}
	if opt.actualCost != nil {
		query += ", actual_cost = ?"
		args = append(args, *opt.actualCost)
	}

	query += " WHERE id = ? AND version = ?"
	args = append(args, requestID, req.Version)

	result, err := tx.Exec(query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, errVersionConflict
	}

	return req, nil
}

// respondTransitionError maps the transition helper's failures onto
// HTTP statuses.
func respondTransitionError(c *gin.Context, err error) {
	switch {
	case err == sql.ErrNoRows:
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Request was modified by someone else. Reload and retry."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request"})
	}
}

// ResubmitRequest is the handler for POST /v1/requests/:id/resubmit
// It moves a request back from rectification_required to pending after
// the requester corrected it.
func (h *Handlers) ResubmitRequest(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	requesterID := userIDRaw.(int64)

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	req, err := h.transitionRequest(tx, requestID, lifecycle.StatusPending, transitionOptions{})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	// Only the owner can resubmit.
	if req.RequesterID != requesterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only resubmit your own requests"})
		return
	}

	// Let the reviewing manager know the corrected version is back.
	if req.ReviewedBy != nil {
		msg := "Request " + req.Code + " was corrected and resubmitted"
		if err := h.AddNotification(tx, *req.ReviewedBy, models.NotifNewRequest, "Request resubmitted", msg, req.ID, "request"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request resubmitted and pending review again"})
}

// ConfirmReceipt is the handler for POST /v1/requests/:id/confirm-receipt
// awarded (or reopened_noncompliance) → completed, stamping received_at,
// received_confirmed_by and completed_at.
func (h *Handlers) ConfirmReceipt(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	requesterID := userIDRaw.(int64)

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	req, err := h.transitionRequest(tx, requestID, lifecycle.StatusCompleted, transitionOptions{
		receivedBy: requesterID,
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	if req.RequesterID != requesterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only confirm receipt on your own requests"})
		return
	}

	// Find the winning supplier so they get the closing notification.
	var supplierID int64
	var supplierName, supplierEmail string
	haveWinner := false
	if req.WinnerQuotationID != nil {
		err = tx.QueryRow(`
			SELECT u.id, u.full_name, u.email
			FROM quotations q JOIN users u ON q.supplier_id = u.id
			WHERE q.id = ?`, *req.WinnerQuotationID).
			Scan(&supplierID, &supplierName, &supplierEmail)
		if err != nil && err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load winning supplier"})
			return
		}
		haveWinner = err == nil
	}

	if haveWinner {
		msg := "Receipt confirmed for request " + req.Code
		if err := h.AddNotification(tx, supplierID, models.NotifReceiptConfirmed, "Receipt confirmed", msg, req.ID, "request"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
			return
		}
	}
	if req.ReviewedBy != nil {
		msg := "The requester confirmed receipt for request " + req.Code
		if err := h.AddNotification(tx, *req.ReviewedBy, models.NotifReceiptConfirmed, "Receipt confirmed", msg, req.ID, "request"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	if haveWinner {
		subject, body := email.ReceiptConfirmedEmail(supplierName, req.Code)
		h.Mailer.Send(supplierEmail, subject, body)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Receipt confirmed. Request completed."})
}

// ReportNonComplianceInput is the payload for reporting a bad delivery.
type ReportNonComplianceInput struct {
	Comment string `json:"comment" binding:"required"`
}

// ReportNonCompliance is the handler for POST /v1/requests/:id/report-noncompliance
// awarded → reopened_noncompliance, alerting the managers.
func (h *Handlers) ReportNonCompliance(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	requesterID := userIDRaw.(int64)

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	var input ReportNonComplianceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	req, err := h.transitionRequest(tx, requestID, lifecycle.StatusReopenedNoncompliance, transitionOptions{
		comment: input.Comment,
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	if req.RequesterID != requesterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only report non-compliance on your own requests"})
		return
	}

	managers, err := h.activeManagers(tx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load managers"})
		return
	}
	for _, m := range managers {
		msg := "Non-compliance reported on request " + req.Code + ": " + input.Comment
		if err := h.AddNotification(tx, m.ID, models.NotifNoncomplianceReported, "Non-compliance reported", msg, req.ID, "request"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notifications"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	for _, m := range managers {
		subject, body := email.NoncomplianceEmail(m.Name, req.Code, input.Comment)
		h.Mailer.Send(m.Email, subject, body)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Non-compliance reported. The request was reopened."})
}
