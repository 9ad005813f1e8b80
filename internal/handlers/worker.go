package handlers

import (
	"log"
	"time"
)

// ProcessOverdueInvitations is called by the background worker started
// in main. It sweeps quotation invitations whose deadline passed while
// still unanswered and marks them expired. A missed sweep is harmless:
// SubmitQuotation re-checks the deadline on its own.
func (h *Handlers) ProcessOverdueInvitations() {
	result, err := h.DB.Exec(
		"UPDATE quotation_invitations SET status = 'expired' WHERE status = 'sent' AND due_date IS NOT NULL AND due_date < ?",
		time.Now())
	if err != nil {
		log.Printf("overdue invitation sweep failed: %v", err)
		return
	}

	if expired, err := result.RowsAffected(); err == nil && expired > 0 {
		log.Printf("overdue invitation sweep: expired %d invitation(s)", expired)
	}
}
