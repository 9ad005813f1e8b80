package lifecycle

import "time"

//
// --- Dashboard Stats & Efficiency Metrics ---
//
// These are pure classification functions over request rows so that the
// dashboard numbers stay consistent everywhere they are shown.
//

// Stats is the four-bucket breakdown used by the requester and manager
// dashboards. Every status lands in exactly one bucket, so
// Pending + InProgress + Completed + Rejected == Total.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Rejected   int `json:"rejected"`
}

// BucketOf classifies a raw status string (aliases included) into one of
// the four dashboard buckets: "pending", "inProgress", "completed",
// "rejected". Unknown statuses count as pending rather than vanishing
// from the totals.
func BucketOf(raw string) string {
	switch Normalize(raw) {
	case StatusCompleted:
		return "completed"
	case StatusRejected:
		return "rejected"
	case StatusInProgress, StatusQuoting, StatusAwarded, StatusReopenedNoncompliance:
		return "inProgress"
	default:
		// pending, rectification_required and anything unrecognized
		return "pending"
	}
}

// BuildStats folds a list of raw status strings into a Stats breakdown.
func BuildStats(statuses []string) Stats {
	stats := Stats{Total: len(statuses)}
	for _, s := range statuses {
		switch BucketOf(s) {
		case "completed":
			stats.Completed++
		case "rejected":
			stats.Rejected++
		case "inProgress":
			stats.InProgress++
		default:
			stats.Pending++
		}
	}
	return stats
}

// RequestFacts carries the fields the efficiency metrics need, decoupled
// from the full request model so this package stays DB-free.
type RequestFacts struct {
	Status      string
	CreatedAt   time.Time
	CompletedAt *time.Time
	ActualCost  *float64
}

// Metrics is the manager efficiency view.
type Metrics struct {
	ApprovalRatePct float64 `json:"approvalRatePct"`
	AverageTimeDays float64 `json:"averageTimeDays"`
	AverageCost     float64 `json:"averageCost"`
}

// ComputeMetrics scans all requests and derives the approval rate, the
// average completion time (only over requests carrying both timestamps)
// and the average cost (only over requests with a recorded cost).
// Every average guards against an empty qualifying set by returning zero.
func ComputeMetrics(requests []RequestFacts) Metrics {
	m := Metrics{}
	if len(requests) == 0 {
		return m
	}

	approved := 0
	completedDays := 0.0
	completedCount := 0
	costTotal := 0.0
	costCount := 0

	for _, r := range requests {
		switch Normalize(r.Status) {
		case StatusInProgress, StatusQuoting, StatusAwarded,
			StatusCompleted, StatusReopenedNoncompliance:
			approved++
		}

		if r.CompletedAt != nil && !r.CreatedAt.IsZero() {
			completedDays += r.CompletedAt.Sub(r.CreatedAt).Hours() / 24
			completedCount++
		}

		if r.ActualCost != nil {
			costTotal += *r.ActualCost
			costCount++
		}
	}

	m.ApprovalRatePct = float64(approved) / float64(len(requests)) * 100
	if completedCount > 0 {
		m.AverageTimeDays = completedDays / float64(completedCount)
	}
	if costCount > 0 {
		m.AverageCost = costTotal / float64(costCount)
	}
	return m
}
