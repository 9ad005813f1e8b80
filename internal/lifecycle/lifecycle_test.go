package lifecycle

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateRequestCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^REQ-\d{6}-\d{3}$`)
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		code := GenerateRequestCode(now)
		require.Regexp(t, pattern, code)
		require.Equal(t, "REQ-202609-", code[:11])
	}
}

func TestRelativeTimeBuckets(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"seconds", 30 * time.Second, "just now"},
		{"minutes", 5 * time.Minute, "5 min ago"},
		{"ninety minutes", 90 * time.Minute, "1 h ago"},
		{"hours", 6 * time.Hour, "6 h ago"},
		{"days", 3 * 24 * time.Hour, "3 days ago"},
		{"ten days", 10 * 24 * time.Hour, "1 weeks ago"},
		{"months", 65 * 24 * time.Hour, "2 months ago"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, RelativeTime(now.Add(-tc.elapsed), now))
		})
	}
}

func TestNormalizeAliases(t *testing.T) {
	require.Equal(t, StatusAwarded, Normalize("adjudicado"))
	require.Equal(t, StatusQuoting, Normalize("cotizacion"))
	require.Equal(t, StatusPending, Normalize("pendiente"))
	require.Equal(t, StatusRejected, Normalize("rechazado"))
	require.Equal(t, StatusInProgress, Normalize("en_proceso"))

	// canonical values pass through untouched
	require.Equal(t, StatusCompleted, Normalize("completed"))
	// unknown values are preserved so IsValid can flag them
	require.Equal(t, Status("garbage"), Normalize("garbage"))
	require.False(t, IsValid(Normalize("garbage")))
}

func TestSpellingsCoverLegacyAliases(t *testing.T) {
	require.Equal(t, []string{"awarded", "adjudicado"}, Spellings(StatusAwarded))
	require.Equal(t, []string{"quoting", "cotizacion"}, Spellings(StatusQuoting))
	require.Equal(t, []string{"pending", "pendiente"}, Spellings(StatusPending))

	// statuses that never had a legacy spelling return just themselves
	require.Equal(t, []string{"rectification_required"}, Spellings(StatusRectificationRequired))
	require.Equal(t, []string{"reopened_noncompliance"}, Spellings(StatusReopenedNoncompliance))

	// alias input normalizes before expansion
	require.Equal(t, []string{"awarded", "adjudicado"}, Spellings(Status("adjudicado")))
}

func TestTransitionLegalEdges(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusRectificationRequired},
		{StatusPending, StatusRejected},
		{StatusRectificationRequired, StatusPending},
		{StatusInProgress, StatusQuoting},
		{StatusInProgress, StatusRejected},
		{StatusQuoting, StatusAwarded},
		{StatusQuoting, StatusRejected},
		{StatusAwarded, StatusCompleted},
		{StatusAwarded, StatusReopenedNoncompliance},
		{StatusReopenedNoncompliance, StatusQuoting},
		{StatusReopenedNoncompliance, StatusAwarded},
		{StatusReopenedNoncompliance, StatusCompleted},
	}
	for _, e := range legal {
		require.NoError(t, Transition(e.from, e.to), "%s -> %s should be legal", e.from, e.to)
	}
}

func TestTransitionIllegalEdges(t *testing.T) {
	illegal := []struct{ from, to Status }{
		{StatusCompleted, StatusPending},
		{StatusRejected, StatusPending},
		{StatusPending, StatusAwarded},
		{StatusPending, StatusCompleted},
		{StatusQuoting, StatusPending},
		{StatusAwarded, StatusQuoting},
	}
	for _, e := range illegal {
		err := Transition(e.from, e.to)
		require.ErrorIs(t, err, ErrIllegalTransition, "%s -> %s should be illegal", e.from, e.to)
	}

	// legacy aliases are normalized before edge matching
	require.NoError(t, Transition(Status("cotizacion"), Status("adjudicado")))
}

func TestTransitionUnknownTarget(t *testing.T) {
	require.ErrorIs(t, Transition(StatusPending, Status("banana")), ErrIllegalTransition)
}

func TestIsTerminal(t *testing.T) {
	require.True(t, IsTerminal(StatusCompleted))
	require.True(t, IsTerminal(StatusRejected))
	require.False(t, IsTerminal(StatusPending))
	require.False(t, IsTerminal(StatusAwarded))
}

func TestBuildStatsPartitionsEveryStatus(t *testing.T) {
	statuses := []string{
		"pending", "rectification_required", "in_progress", "quoting",
		"awarded", "completed", "rejected", "reopened_noncompliance",
		// legacy spellings
		"adjudicado", "cotizacion", "pendiente", "rechazado",
		// drifted garbage still counts somewhere
		"???",
	}

	stats := BuildStats(statuses)
	require.Equal(t, len(statuses), stats.Total)
	require.Equal(t, stats.Total, stats.Pending+stats.InProgress+stats.Completed+stats.Rejected)
	require.Equal(t, 4, stats.Pending)    // pending, rectification_required, pendiente, ???
	require.Equal(t, 6, stats.InProgress) // in_progress, quoting, awarded, reopened_noncompliance, adjudicado, cotizacion
	require.Equal(t, 1, stats.Completed)
	require.Equal(t, 2, stats.Rejected) // rejected, rechazado
}

func TestBuildStatsEmpty(t *testing.T) {
	require.Equal(t, Stats{}, BuildStats(nil))
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil)
	require.Zero(t, m.ApprovalRatePct)
	require.Zero(t, m.AverageTimeDays)
	require.Zero(t, m.AverageCost)
}

func TestComputeMetricsSingleCompleted(t *testing.T) {
	created := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)
	completed := created.Add(3 * 24 * time.Hour)
	cost := 1250.0

	m := ComputeMetrics([]RequestFacts{{
		Status:      "completed",
		CreatedAt:   created,
		CompletedAt: &completed,
		ActualCost:  &cost,
	}})

	require.Equal(t, 100.0, m.ApprovalRatePct)
	require.Equal(t, 3.0, m.AverageTimeDays)
	require.Equal(t, 1250.0, m.AverageCost)
}

func TestComputeMetricsMixed(t *testing.T) {
	created := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)
	completed := created.Add(48 * time.Hour)

	m := ComputeMetrics([]RequestFacts{
		{Status: "pending", CreatedAt: created},
		{Status: "rejected", CreatedAt: created},
		{Status: "adjudicado", CreatedAt: created},
		{Status: "completed", CreatedAt: created, CompletedAt: &completed},
	})

	require.Equal(t, 50.0, m.ApprovalRatePct) // adjudicado + completed out of 4
	require.Equal(t, 2.0, m.AverageTimeDays)  // only the completed one qualifies
	require.Zero(t, m.AverageCost)            // nobody recorded a cost
}
