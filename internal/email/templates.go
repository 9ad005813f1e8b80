package email

import "fmt"

//
// --- Email Templates ---
//
// Each notification type has a fixed subject/template pairing. Templates
// are static HTML with interpolated fields, no layout logic.
//

const footer = `<p style="color:#888;font-size:12px">JESKI Procurement &mdash; this is an automated message, please do not reply.</p>`

// NewRequestEmail goes to every active manager when a requester submits.
func NewRequestEmail(managerName, requesterName, code, title string) (string, string) {
	subject := fmt.Sprintf("New purchasing request %s awaiting review", code)
	body := fmt.Sprintf(`
		<h2>New Purchasing Request</h2>
		<p>Hello %s,</p>
		<p><strong>%s</strong> submitted a new request <strong>%s</strong>: %s.</p>
		<p>Please review it in the manager dashboard.</p>%s`,
		managerName, requesterName, code, title, footer)
	return subject, body
}

// RequestCreatedEmail confirms the submission back to the requester.
func RequestCreatedEmail(requesterName, code, title string) (string, string) {
	subject := fmt.Sprintf("Your request %s was received", code)
	body := fmt.Sprintf(`
		<h2>Request Received</h2>
		<p>Hello %s,</p>
		<p>Your request <strong>%s</strong> (%s) was created and is pending review.</p>%s`,
		requesterName, code, title, footer)
	return subject, body
}

// ApprovedEmail tells the requester their request moved into processing.
func ApprovedEmail(requesterName, code string) (string, string) {
	subject := fmt.Sprintf("Request %s approved", code)
	body := fmt.Sprintf(`
		<h2>Request Approved</h2>
		<p>Hello %s,</p>
		<p>Your request <strong>%s</strong> was approved and is now in progress.</p>%s`,
		requesterName, code, footer)
	return subject, body
}

// RectificationEmail asks the requester for corrections.
func RectificationEmail(requesterName, code, comment string) (string, string) {
	subject := fmt.Sprintf("Request %s needs corrections", code)
	body := fmt.Sprintf(`
		<h2>Corrections Requested</h2>
		<p>Hello %s,</p>
		<p>A manager reviewed your request <strong>%s</strong> and asked for corrections:</p>
		<blockquote>%s</blockquote>
		<p>Please update and resubmit the request.</p>%s`,
		requesterName, code, comment, footer)
	return subject, body
}

// RejectedEmail tells the requester the request was rejected.
func RejectedEmail(requesterName, code string) (string, string) {
	subject := fmt.Sprintf("Request %s rejected", code)
	body := fmt.Sprintf(`
		<h2>Request Rejected</h2>
		<p>Hello %s,</p>
		<p>Your request <strong>%s</strong> was rejected. Contact your manager for details.</p>%s`,
		requesterName, code, footer)
	return subject, body
}

// QuotationInvitationEmail invites one supplier to quote.
func QuotationInvitationEmail(supplierName, code, title, dueDate string) (string, string) {
	subject := fmt.Sprintf("Invitation to quote: %s", code)
	body := fmt.Sprintf(`
		<h2>Quotation Invitation</h2>
		<p>Hello %s,</p>
		<p>You are invited to submit a quotation for request <strong>%s</strong>: %s.</p>
		<p>Quotations are due by <strong>%s</strong>.</p>%s`,
		supplierName, code, title, dueDate, footer)
	return subject, body
}

// QuotationReceivedEmail tells the reviewing manager a quote arrived.
func QuotationReceivedEmail(managerName, supplierName, code string) (string, string) {
	subject := fmt.Sprintf("New quotation for request %s", code)
	body := fmt.Sprintf(`
		<h2>Quotation Received</h2>
		<p>Hello %s,</p>
		<p><strong>%s</strong> submitted a quotation for request <strong>%s</strong>.</p>%s`,
		managerName, supplierName, code, footer)
	return subject, body
}

// WinnerSelectedEmail congratulates the winning supplier.
func WinnerSelectedEmail(supplierName, code string) (string, string) {
	subject := fmt.Sprintf("Your quotation for %s was selected", code)
	body := fmt.Sprintf(`
		<h2>Quotation Selected</h2>
		<p>Hello %s,</p>
		<p>Congratulations! Your quotation for request <strong>%s</strong> was selected as the winner.</p>%s`,
		supplierName, code, footer)
	return subject, body
}

// SupplierSelectedEmail tells the requester which supplier won.
func SupplierSelectedEmail(requesterName, supplierName, code string) (string, string) {
	subject := fmt.Sprintf("Supplier selected for request %s", code)
	body := fmt.Sprintf(`
		<h2>Supplier Selected</h2>
		<p>Hello %s,</p>
		<p><strong>%s</strong> was selected to fulfill your request <strong>%s</strong>.</p>%s`,
		requesterName, supplierName, code, footer)
	return subject, body
}

// ReceiptConfirmedEmail closes the loop with the winning supplier.
func ReceiptConfirmedEmail(supplierName, code string) (string, string) {
	subject := fmt.Sprintf("Receipt confirmed for request %s", code)
	body := fmt.Sprintf(`
		<h2>Receipt Confirmed</h2>
		<p>Hello %s,</p>
		<p>The requester confirmed receipt for request <strong>%s</strong>. The request is now completed.</p>%s`,
		supplierName, code, footer)
	return subject, body
}

// NoncomplianceEmail alerts a manager that a delivery was reported
// non-compliant.
func NoncomplianceEmail(managerName, code, comment string) (string, string) {
	subject := fmt.Sprintf("Non-compliance reported on request %s", code)
	body := fmt.Sprintf(`
		<h2>Non-Compliance Reported</h2>
		<p>Hello %s,</p>
		<p>The requester reported a non-compliant delivery on request <strong>%s</strong>:</p>
		<blockquote>%s</blockquote>%s`,
		managerName, code, comment, footer)
	return subject, body
}
