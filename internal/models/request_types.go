package models

import (
	"time"
)

// Attachment is one uploaded file hanging off a request.
// The array is stored as a JSON column on the requests table.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Request is the model for the 'requests' table.
type Request struct {
	ID     int64  `json:"id" db:"id"`
	Code   string `json:"code" db:"code"`
	Status string `json:"status" db:"status"`

	// --- Descriptive Fields ---
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	ProjectType string     `json:"projectType" db:"project_type"`
	SearchClass string     `json:"searchClass" db:"search_class"`
	Urgency     string     `json:"urgency" db:"urgency"`
	DueDate     *time.Time `json:"dueDate,omitempty" db:"due_date"`
	Department  string     `json:"department" db:"department"`

	// --- Requester Identity (denormalized for list views) ---
	RequesterID    int64  `json:"requesterId" db:"requester_id"`
	RequesterName  string `json:"requesterName" db:"requester_name"`
	RequesterEmail string `json:"requesterEmail" db:"requester_email"`

	// --- Supplier Matching Criteria (JSON columns, free-form arrays) ---
	RequiredBusinessType string   `json:"requiredBusinessType" db:"required_business_type"`
	RequiredCategories   []string `json:"requiredCategories" db:"-"`
	RequiredTags         []string `json:"requiredTags" db:"-"`
	CustomTags           []string `json:"customTags" db:"-"`

	Attachments []Attachment `json:"attachments" db:"-"`

	// --- Workflow Side Fields ---
	ReviewedBy           *int64     `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt           *time.Time `json:"reviewedAt,omitempty" db:"reviewed_at"`
	RectificationComment *string    `json:"rectificationComment,omitempty" db:"rectification_comment"`
	CompletedAt          *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	ReceivedAt           *time.Time `json:"receivedAt,omitempty" db:"received_at"`
	ReceivedConfirmedBy  *int64     `json:"receivedConfirmedBy,omitempty" db:"received_confirmed_by"`
	WinnerQuotationID    *int64     `json:"winnerQuotationId,omitempty" db:"winner_quotation_id"`
	ActualCost           *float64   `json:"actualCost,omitempty" db:"actual_cost"`

	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Flattened field for UI convenience (populated manually)
	RelativeTime string `json:"relativeTime,omitempty" db:"-"`
}
