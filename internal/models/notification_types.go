package models

import (
	"time"
)

// Notification types. Each has a fixed subject/template pairing on the
// email side (see internal/email).
const (
	NotifNewRequest            = "new_request"
	NotifRequestCreated        = "request_created_confirmation"
	NotifApproved              = "approved"
	NotifRectification         = "rectification_requested"
	NotifRejected              = "rejected"
	NotifQuotationInvitation   = "quotation_invitation"
	NotifQuotationReceived     = "quotation_received"
	NotifWinnerSelected        = "winner_selected"
	NotifSupplierSelected      = "supplier_selected"
	NotifReceiptConfirmed      = "receipt_confirmed"
	NotifNoncomplianceReported = "noncompliance_reported"
)

// Notification is the model for the 'notifications' table
type Notification struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	Type        string    `json:"type" db:"type"`
	Title       string    `json:"title" db:"title"`
	Message     string    `json:"message" db:"message"`
	RelatedID   *int64    `json:"relatedId,omitempty" db:"related_id"`
	RelatedType *string   `json:"relatedType,omitempty" db:"related_type"`
	IsRead      bool      `json:"isRead" db:"is_read"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
