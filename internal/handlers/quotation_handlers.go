package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/email"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Supplier: Invitation & Quotation Handlers ---
//

// GetMyInvitations is the handler for GET /v1/supplier/invitations
// Expired invitations are still listed so suppliers can see what they missed.
func (h *Handlers) GetMyInvitations(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	supplierID := userIDRaw.(int64)

	query := `
		SELECT qi.id, qi.request_id, qi.supplier_id, qi.status, qi.due_date,
		       qi.message, qi.created_at, r.code, r.title
		FROM quotation_invitations qi
		JOIN requests r ON qi.request_id = r.id
		WHERE qi.supplier_id = ?
		ORDER BY qi.created_at DESC`

	rows, err := h.DB.Query(query, supplierID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	invitations := []*models.QuotationInvitation{}
	for rows.Next() {
		var inv models.QuotationInvitation
		if err := rows.Scan(
			&inv.ID, &inv.RequestID, &inv.SupplierID, &inv.Status, &inv.DueDate,
			&inv.Message, &inv.CreatedAt, &inv.RequestCode, &inv.RequestTitle,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan invitation row"})
			return
		}
		invitations = append(invitations, &inv)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating invitation rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// DeclineInvitation is the handler for POST /v1/supplier/invitations/:id/decline
func (h *Handlers) DeclineInvitation(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	supplierID := userIDRaw.(int64)

	invitationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation id"})
		return
	}

	// The WHERE clause enforces both ownership and current status, so a
	// quoted or expired invitation cannot be declined.
	result, err := h.DB.Exec(
		"UPDATE quotation_invitations SET status = 'declined' WHERE id = ? AND supplier_id = ? AND status = 'sent'",
		invitationID, supplierID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decline invitation"})
		return
	}
	affected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found, already answered or expired"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
}

// SubmitQuotationInput is the payload for POST /v1/supplier/quotations
type SubmitQuotationInput struct {
	InvitationID int64   `json:"invitationId" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	Currency     string  `json:"currency" binding:"required,len=3"`
	DeliveryDays int     `json:"deliveryDays" binding:"required,gt=0"`
	Notes        string  `json:"notes,omitempty"`
	FileURL      string  `json:"fileUrl,omitempty"`
}

// SubmitQuotation is the handler for POST /v1/supplier/quotations
// It rejects expired or already-answered invitations, creates the
// quotation and flips the invitation to 'quoted'.
func (h *Handlers) SubmitQuotation(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	supplierID := userIDRaw.(int64)

	var input SubmitQuotationInput
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

	// 1. --- Lock & Validate the Invitation ---
	var inv models.QuotationInvitation
	err = tx.QueryRow(`
		SELECT id, request_id, supplier_id, status, due_date
		FROM quotation_invitations
		WHERE id = ? FOR UPDATE`, input.InvitationID).
		Scan(&inv.ID, &inv.RequestID, &inv.SupplierID, &inv.Status, &inv.DueDate)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invitation"})
		return
	}

	if inv.SupplierID != supplierID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This invitation belongs to another supplier"})
		return
	}
	if inv.Status != models.InvitationSent {
		c.JSON(http.StatusConflict, gin.H{"error": "This invitation has already been answered or expired"})
		return
	}
	now := time.Now()
	if inv.DueDate != nil && now.After(*inv.DueDate) {
		// The worker may not have swept it yet; fail the same way.
		_, _ = tx.Exec("UPDATE quotation_invitations SET status = 'expired' WHERE id = ?", inv.ID)
		_ = tx.Commit()
		c.JSON(http.StatusConflict, gin.H{"error": "The quotation deadline has passed"})
		return
	}

	// 2. --- Create the Quotation ---
	result, err := tx.Exec(`
		INSERT INTO quotations
		(request_id, supplier_id, invitation_id, amount, currency, delivery_days,
		 notes, file_url, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'submitted', ?, ?)`,
		inv.RequestID, supplierID, inv.ID, input.Amount, input.Currency,
		input.DeliveryDays, nullIfEmpty(input.Notes), nullIfEmpty(input.FileURL), now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quotation"})
		return
	}
	quotationID, _ := result.LastInsertId()

	if _, err := tx.Exec(
		"UPDATE quotation_invitations SET status = 'quoted' WHERE id = ?", inv.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invitation"})
		return
	}

	// 3. --- Notify the Reviewing Manager ---
	var reqCode, supplierName string
	var reviewedBy sql.NullInt64
	var managerName, managerEmail string
	err = tx.QueryRow("SELECT code, reviewed_by FROM requests WHERE id = ?", inv.RequestID).
		Scan(&reqCode, &reviewedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load request"})
		return
	}
	if err := tx.QueryRow("SELECT full_name FROM users WHERE id = ?", supplierID).Scan(&supplierName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load supplier profile"})
		return
	}

	notifyManager := false
	if reviewedBy.Valid {
		err = tx.QueryRow("SELECT full_name, email FROM users WHERE id = ?", reviewedBy.Int64).
			Scan(&managerName, &managerEmail)
		if err == nil {
			notifyManager = true
			msg := supplierName + " submitted a quotation for request " + reqCode
			if err := h.AddNotification(tx, reviewedBy.Int64, models.NotifQuotationReceived, "Quotation received", msg, inv.RequestID, "request"); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
				return
			}
		} else if err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load manager"})
			return
		}
	}

	// 4. --- Commit & Email ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	if notifyManager {
		subject, body := email.QuotationReceivedEmail(managerName, supplierName, reqCode)
		h.Mailer.Send(managerEmail, subject, body)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Quotation submitted successfully",
		"quotationId": quotationID,
	})
}

// nullIfEmpty maps "" to NULL for optional text columns.
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
