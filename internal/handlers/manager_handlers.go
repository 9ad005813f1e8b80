package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/email"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/lifecycle"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Manager: Request Review Handlers ---
//

// GetAllRequests is the handler for GET /v1/manager/requests
func (h *Handlers) GetAllRequests(c *gin.Context) {
	requests, ok := h.listRequests(c,
		"SELECT"+requestColumns+" FROM requests ORDER BY created_at DESC")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// GetRecentRequests is the handler for GET /v1/manager/requests/recent?limit=n
// "Recent" is a fixed-size newest-first prefix; no pagination cursor.
func (h *Handlers) GetRecentRequests(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	requests, ok := h.listRequests(c,
		"SELECT"+requestColumns+" FROM requests ORDER BY created_at DESC LIMIT ?", limit)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// GetRequestsByStatus is the handler for GET /v1/manager/requests/status/:status
// Legacy aliases are accepted and normalized; the filter expands to every
// known spelling of the status so drifted rows still show up.
func (h *Handlers) GetRequestsByStatus(c *gin.Context) {
	canonical := lifecycle.Normalize(c.Param("status"))
	if !lifecycle.IsValid(canonical) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	spellings := lifecycle.Spellings(canonical)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(spellings)), ", ")
	args := make([]interface{}, len(spellings))
	for i, s := range spellings {
		args[i] = s
	}

	requests, ok := h.listRequests(c,
		"SELECT"+requestColumns+" FROM requests WHERE status IN ("+placeholders+") ORDER BY created_at DESC",
		args...)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// UpdateRequestStatusInput is the payload for the manager review action.
// Version enables compare-and-swap: a stale value gets a 409 back.
type UpdateRequestStatusInput struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment,omitempty"`
	Version int    `json:"version,omitempty"`
}

// UpdateRequestStatus is the handler for PATCH /v1/manager/requests/:id/status
// All manager review decisions (approve, request rectification, reject)
// go through here; the lifecycle transition table decides legality.
func (h *Handlers) UpdateRequestStatus(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	managerID := userIDRaw.(int64)

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	var input UpdateRequestStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target := lifecycle.Normalize(input.Status)
	if !lifecycle.IsValid(target) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown target status"})
		return
	}
	if target == lifecycle.StatusRectificationRequired && input.Comment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A comment is required when requesting rectification"})
		return
	}
	// Awarding and completing carry bookkeeping (winner marking, receipt
	// stamps) that only their dedicated endpoints perform.
	if target == lifecycle.StatusAwarded || target == lifecycle.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This status has a dedicated endpoint: use award or confirm-receipt"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	req, err := h.transitionRequest(tx, requestID, target, transitionOptions{
		actorID:         managerID,
		comment:         input.Comment,
		expectedVersion: input.Version,
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	// Notify the requester about the decision.
	notifType, title, msg := reviewNotification(target, req.Code, input.Comment)
	if err := h.AddNotification(tx, req.RequesterID, notifType, title, msg, req.ID, "request"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	// Best-effort email after commit.
	switch target {
	case lifecycle.StatusInProgress:
		subject, body := email.ApprovedEmail(req.RequesterName, req.Code)
		h.Mailer.Send(req.RequesterEmail, subject, body)
	case lifecycle.StatusRectificationRequired:
		subject, body := email.RectificationEmail(req.RequesterName, req.Code, input.Comment)
		h.Mailer.Send(req.RequesterEmail, subject, body)
	case lifecycle.StatusRejected:
		subject, body := email.RejectedEmail(req.RequesterName, req.Code)
		h.Mailer.Send(req.RequesterEmail, subject, body)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Request status updated to " + string(target),
	})
}

// reviewNotification picks the in-app notification content for a manager
// decision.
func reviewNotification(target lifecycle.Status, code, comment string) (string, string, string) {
	switch target {
	case lifecycle.StatusInProgress:
		return models.NotifApproved, "Request approved", "Your request " + code + " was approved and is now in progress"
	case lifecycle.StatusRectificationRequired:
		return models.NotifRectification, "Corrections requested", "Your request " + code + " needs corrections: " + comment
	case lifecycle.StatusRejected:
		return models.NotifRejected, "Request rejected", "Your request " + code + " was rejected"
	default:
		return models.NotifApproved, "Request updated", "Your request " + code + " moved to " + string(target)
	}
}

//
// --- Manager: Quotation Invitations & Award ---
//

// InviteSuppliersInput is the payload for the bulk invitation.
type InviteSuppliersInput struct {
	SupplierIDs []int64    `json:"supplierIds" binding:"required,min=1"`
	DueDate     *time.Time `json:"dueDate" binding:"required"`
	Message     string     `json:"message,omitempty"`
	Version     int        `json:"version,omitempty"`
}

// InviteSuppliers is the handler for POST /v1/manager/requests/:id/invite
// It moves the request into 'quoting' and bulk-creates one invitation per
// supplier. Email fan-out is best-effort and never rolls anything back.
func (h *Handlers) InviteSuppliers(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	managerID := userIDRaw.(int64)

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	var input InviteSuppliersInput
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

	req, err := h.transitionRequest(tx, requestID, lifecycle.StatusQuoting, transitionOptions{
		actorID:         managerID,
		expectedVersion: input.Version,
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	// Bulk-create invitations and collect contacts for the emails.
	type supplierContact struct {
		ID    int64
		Name  string
		Email string
	}
	var invited []supplierContact

	now := time.Now()
	for _, supplierID := range input.SupplierIDs {
		var contact supplierContact
		err := tx.QueryRow("SELECT id, full_name, email FROM users WHERE id = ? AND role = ?",
			supplierID, models.RoleSupplier).Scan(&contact.ID, &contact.Name, &contact.Email)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusBadRequest, gin.H{"error": "One of the invited users is not a supplier"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load supplier"})
			return
		}

		_, err = tx.Exec(`
			INSERT INTO quotation_invitations
			(request_id, supplier_id, status, due_date, message, created_at)
			VALUES (?, ?, 'sent', ?, ?, ?)`,
			requestID, supplierID, input.DueDate, input.Message, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
			return
		}

		msg := "You were invited to quote on request " + req.Code + ": " + req.Title
		if err := h.AddNotification(tx, supplierID, models.NotifQuotationInvitation, "Quotation invitation", msg, requestID, "request"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notifications"})
			return
		}

		invited = append(invited, contact)
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	due := ""
	if input.DueDate != nil {
		due = input.DueDate.Format("2006-01-02")
	}
	for _, s := range invited {
		subject, body := email.QuotationInvitationEmail(s.Name, req.Code, req.Title, due)
		h.Mailer.Send(s.Email, subject, body)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Suppliers invited. Request is now quoting.",
		"invited": len(invited),
	})
}

// GetQuotationsForRequest is the handler for GET /v1/manager/requests/:id/quotations
func (h *Handlers) GetQuotationsForRequest(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	query := `
		SELECT q.id, q.request_id, q.supplier_id, q.invitation_id, q.amount,
		       q.currency, q.delivery_days, q.notes, q.file_url, q.status,
		       q.created_at, q.updated_at, u.full_name, u.email
		FROM quotations q
		JOIN users u ON q.supplier_id = u.id
		WHERE q.request_id = ?
		ORDER BY q.amount ASC`

	rows, err := h.DB.Query(query, requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	quotations := []*models.Quotation{}
	for rows.Next() {
		var q models.Quotation
		if err := rows.Scan(
			&q.ID, &q.RequestID, &q.SupplierID, &q.InvitationID, &q.Amount,
			&q.Currency, &q.DeliveryDays, &q.Notes, &q.FileURL, &q.Status,
			&q.CreatedAt, &q.UpdatedAt, &q.SupplierName, &q.SupplierEmail,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan quotation row"})
			return
		}
		quotations = append(quotations, &q)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating quotation rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotations": quotations})
}

// AwardRequestInput selects the winning quotation.
type AwardRequestInput struct {
	QuotationID int64 `json:"quotationId" binding:"required"`
	Version     int   `json:"version,omitempty"`
}

// AwardRequest is the handler for POST /v1/manager/requests/:id/award
// quoting → awarded; sets winner_quotation_id, records the winning amount
// as the actual cost, marks sibling quotations not_selected and notifies
// everyone involved.
func (h *Handlers) AwardRequest(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	managerID := userIDRaw.(int64)

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request id"})
		return
	}

	var input AwardRequestInput
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

	// 1. --- Load & Lock the Winning Quotation ---
	var winnerSupplierID int64
	var winnerAmount float64
	var winnerName, winnerEmail string
	err = tx.QueryRow(`
		SELECT q.supplier_id, q.amount, u.full_name, u.email
		FROM quotations q JOIN users u ON q.supplier_id = u.id
		WHERE q.id = ? AND q.request_id = ?
		FOR UPDATE`, input.QuotationID, requestID).
		Scan(&winnerSupplierID, &winnerAmount, &winnerName, &winnerEmail)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found for this request"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quotation"})
		return
	}

	// 2. --- Transition the Request ---
	req, err := h.transitionRequest(tx, requestID, lifecycle.StatusAwarded, transitionOptions{
		actorID:         managerID,
		expectedVersion: input.Version,
		winnerQuotation: input.QuotationID,
		actualCost:      &winnerAmount,
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	// 3. --- Mark Winner / Losers ---
	now := time.Now()
	if _, err := tx.Exec(
		"UPDATE quotations SET status = 'winner', updated_at = ? WHERE id = ?",
		now, input.QuotationID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark winning quotation"})
		return
	}
	if _, err := tx.Exec(
		"UPDATE quotations SET status = 'not_selected', updated_at = ? WHERE request_id = ? AND id != ?",
		now, requestID, input.QuotationID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark sibling quotations"})
		return
	}

	// 4. --- Notify Winner, Losers, Requester ---
	if err := h.AddNotification(tx, winnerSupplierID, models.NotifWinnerSelected, "Quotation selected",
		"Your quotation for request "+req.Code+" was selected as the winner", req.ID, "request"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notifications"})
		return
	}

	loserRows, err := tx.Query(
		"SELECT supplier_id FROM quotations WHERE request_id = ? AND id != ?",
		requestID, input.QuotationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sibling quotations"})
		return
	}
	var losers []int64
	for loserRows.Next() {
		var id int64
		if err := loserRows.Scan(&id); err != nil {
			loserRows.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan supplier id"})
			return
		}
		losers = append(losers, id)
	}
	loserRows.Close()
	for _, supplierID := range losers {
		if err := h.AddNotification(tx, supplierID, models.NotifWinnerSelected, "Quotation not selected",
			"Another quotation was selected for request "+req.Code, req.ID, "request"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notifications"})
			return
		}
	}

	if err := h.AddNotification(tx, req.RequesterID, models.NotifSupplierSelected, "Supplier selected",
		winnerName+" was selected for your request "+req.Code, req.ID, "request"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notifications"})
		return
	}

	// 5. --- Commit & Email ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	subject, body := email.WinnerSelectedEmail(winnerName, req.Code)
	h.Mailer.Send(winnerEmail, subject, body)
	subject, body = email.SupplierSelectedEmail(req.RequesterName, winnerName, req.Code)
	h.Mailer.Send(req.RequesterEmail, subject, body)

	c.JSON(http.StatusOK, gin.H{"message": "Request awarded successfully"})
}

// GetSuppliers is the handler for GET /v1/manager/suppliers
// Lists supplier accounts with their EPI summary for the evaluation view.
func (h *Handlers) GetSuppliers(c *gin.Context) {
	query := `
		SELECT id, role, status, email, full_name, phone_number, company_name,
		       tax_id, supplier_status, epi_score, epi_progress, created_at, updated_at
		FROM users
		WHERE role = ?
		ORDER BY created_at DESC`

	rows, err := h.DB.Query(query, models.RoleSupplier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	suppliers := []*models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Role, &u.Status, &u.Email, &u.FullName, &u.PhoneNumber,
			&u.CompanyName, &u.TaxID, &u.SupplierStatus, &u.EpiScore,
			&u.EpiProgress, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan supplier row"})
			return
		}
		suppliers = append(suppliers, &u)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating supplier rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}
