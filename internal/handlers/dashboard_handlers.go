package handlers

import (
	"net/http"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/lifecycle"
	"github.com/gin-gonic/gin"
)

//
// --- Dashboard Stats ---
//
// The bucket logic lives in internal/lifecycle so the numbers stay
// consistent everywhere; these handlers only fetch and fold rows.
//

// queryStats scans raw statuses (aliases included) and folds them into
// the four dashboard buckets.
func (h *Handlers) queryStats(c *gin.Context, query string, args ...interface{}) (lifecycle.Stats, bool) {
	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return lifecycle.Stats{}, false
	}
	defer rows.Close()

	var statuses []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan status row"})
			return lifecycle.Stats{}, false
		}
		statuses = append(statuses, s)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating status rows"})
		return lifecycle.Stats{}, false
	}

	return lifecycle.BuildStats(statuses), true
}

// GetMyRequestStats is the handler for GET /v1/requests/my/stats
func (h *Handlers) GetMyRequestStats(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	requesterID := userIDRaw.(int64)

	stats, ok := h.queryStats(c, "SELECT status FROM requests WHERE requester_id = ?", requesterID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ManagerStats is the KPI payload for the manager dashboard.
type ManagerStats struct {
	lifecycle.Stats
	PendingReview      int `json:"pendingReview"`
	OpenInvitations    int `json:"openInvitations"`
	SuppliersEvaluated int `json:"suppliersEvaluated"`
}

// GetManagerStats is the handler for GET /v1/manager/stats
func (h *Handlers) GetManagerStats(c *gin.Context) {
	stats, ok := h.queryStats(c, "SELECT status FROM requests")
	if !ok {
		return
	}
	out := ManagerStats{Stats: stats}

	// 1. Requests currently waiting on a manager decision
	err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM requests WHERE status IN ('pending', 'pendiente')").
		Scan(&out.PendingReview)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count pending requests"})
		return
	}

	// 2. Invitations still out with suppliers
	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM quotation_invitations WHERE status = 'sent'").
		Scan(&out.OpenInvitations)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count open invitations"})
		return
	}

	// 3. Suppliers with a completed EPI
	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM users WHERE role = 'proveedor' AND supplier_status = 'evaluated'").
		Scan(&out.SuppliersEvaluated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count evaluated suppliers"})
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetEfficiencyMetrics is the handler for GET /v1/manager/metrics
// Full-collection scan folded by lifecycle.ComputeMetrics; empty sets
// come back as zeros, never a division error.
func (h *Handlers) GetEfficiencyMetrics(c *gin.Context) {
	rows, err := h.DB.Query("SELECT status, created_at, completed_at, actual_cost FROM requests")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	var facts []lifecycle.RequestFacts
	for rows.Next() {
		var f lifecycle.RequestFacts
		if err := rows.Scan(&f.Status, &f.CreatedAt, &f.CompletedAt, &f.ActualCost); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan request row"})
			return
		}
		facts = append(facts, f)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating request rows"})
		return
	}

	c.JSON(http.StatusOK, lifecycle.ComputeMetrics(facts))
}

// SupplierStats is the KPI payload for the supplier dashboard.
type SupplierStats struct {
	OpenInvitations     int `json:"openInvitations"`
	SubmittedQuotations int `json:"submittedQuotations"`
	WonQuotations       int `json:"wonQuotations"`
	EpiProgress         int `json:"epiProgress"`
}

// GetSupplierDashboardStats is the handler for GET /v1/supplier/dashboard-stats
func (h *Handlers) GetSupplierDashboardStats(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	supplierID := userIDRaw.(int64)

	stats := SupplierStats{}

	// 1. Invitations awaiting an answer
	err := h.DB.QueryRow(
		"SELECT COUNT(*) FROM quotation_invitations WHERE supplier_id = ? AND status = 'sent'",
		supplierID).Scan(&stats.OpenInvitations)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count open invitations"})
		return
	}

	// 2. Quotations submitted
	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM quotations WHERE supplier_id = ?", supplierID).
		Scan(&stats.SubmittedQuotations)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count quotations"})
		return
	}

	// 3. Quotations that won
	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM quotations WHERE supplier_id = ? AND status = 'winner'",
		supplierID).Scan(&stats.WonQuotations)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count winning quotations"})
		return
	}

	// 4. EPI completeness (derived from the section rows)
	var saved int
	err = h.DB.QueryRow(
		"SELECT COUNT(*) FROM supplier_epi_sections WHERE supplier_id = ?", supplierID).
		Scan(&saved)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count EPI sections"})
		return
	}
	stats.EpiProgress = saved * 100 / 5

	c.JSON(http.StatusOK, stats)
}
