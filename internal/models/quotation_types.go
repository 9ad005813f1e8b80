package models

import (
	"time"
)

// Invitation statuses.
const (
	InvitationSent     = "sent"
	InvitationQuoted   = "quoted"
	InvitationDeclined = "declined"
	InvitationExpired  = "expired"
)

// Quotation statuses.
const (
	QuotationSubmitted   = "submitted"
	QuotationWinner      = "winner"
	QuotationNotSelected = "not_selected"
)

// QuotationInvitation links a request to one invited supplier.
// A manager's bulk invite creates one row per supplier.
type QuotationInvitation struct {
	ID         int64      `json:"id" db:"id"`
	RequestID  int64      `json:"requestId" db:"request_id"`
	SupplierID int64      `json:"supplierId" db:"supplier_id"`
	Status     string     `json:"status" db:"status"`
	DueDate    *time.Time `json:"dueDate,omitempty" db:"due_date"`
	Message    *string    `json:"message,omitempty" db:"message"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`

	// Joins (populated manually for list views)
	RequestCode  string `json:"requestCode,omitempty" db:"-"`
	RequestTitle string `json:"requestTitle,omitempty" db:"-"`
}

// Quotation is a supplier's priced response to an invitation.
type Quotation struct {
	ID           int64     `json:"id" db:"id"`
	RequestID    int64     `json:"requestId" db:"request_id"`
	SupplierID   int64     `json:"supplierId" db:"supplier_id"`
	InvitationID int64     `json:"invitationId" db:"invitation_id"`
	Amount       float64   `json:"amount" db:"amount"`
	Currency     string    `json:"currency" db:"currency"`
	DeliveryDays int       `json:"deliveryDays" db:"delivery_days"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	FileURL      *string   `json:"fileUrl,omitempty" db:"file_url"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (populated manually)
	SupplierName  string `json:"supplierName,omitempty" db:"-"`
	SupplierEmail string `json:"supplierEmail,omitempty" db:"-"`
}
