package lifecycle

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Status is the canonical lifecycle state of a purchasing request.
type Status string

const (
	StatusPending               Status = "pending"
	StatusRectificationRequired Status = "rectification_required"
	StatusInProgress            Status = "in_progress"
	StatusQuoting               Status = "quoting"
	StatusAwarded               Status = "awarded"
	StatusCompleted             Status = "completed"
	StatusRejected              Status = "rejected"
	StatusReopenedNoncompliance Status = "reopened_noncompliance"
)

// ErrIllegalTransition is returned when a requested status change is not a
// legal edge of the workflow graph. Handlers surface it as 409 Conflict.
var ErrIllegalTransition = errors.New("illegal status transition")

// aliases maps legacy status spellings still present in production rows
// to their canonical values. Normalization happens in one place (here),
// never at individual call sites.
var aliases = map[string]Status{
	"adjudicado": StatusAwarded,
	"cotizacion": StatusQuoting,
	"pendiente":  StatusPending,
	"rechazado":  StatusRejected,
	"en_proceso": StatusInProgress,
}

// transitions is the closed edge set of the workflow graph.
// completed and rejected are terminal.
var transitions = map[Status][]Status{
	StatusPending:               {StatusInProgress, StatusRectificationRequired, StatusRejected},
	StatusRectificationRequired: {StatusPending},
	StatusInProgress:            {StatusQuoting, StatusRejected},
	StatusQuoting:               {StatusAwarded, StatusRejected},
	StatusAwarded:               {StatusCompleted, StatusReopenedNoncompliance},
	StatusReopenedNoncompliance: {StatusQuoting, StatusAwarded, StatusCompleted},
}

// Normalize maps a raw status string (including legacy aliases) to its
// canonical Status. Unknown values pass through unchanged so that callers
// can still detect them with IsValid.
func Normalize(raw string) Status {
	if canonical, ok := aliases[raw]; ok {
		return canonical
	}
	return Status(raw)
}

// Spellings returns every spelling a status may carry in storage: the
// canonical value first, then any legacy aliases that map to it. Query
// filters must match all of them or drifted rows become invisible.
func Spellings(s Status) []string {
	canonical := Normalize(string(s))
	out := []string{string(canonical)}
	for raw, c := range aliases {
		if c == canonical {
			out = append(out, raw)
		}
	}
	return out
}

// IsValid reports whether s is one of the canonical statuses.
func IsValid(s Status) bool {
	switch s {
	case StatusPending, StatusRectificationRequired, StatusInProgress,
		StatusQuoting, StatusAwarded, StatusCompleted, StatusRejected,
		StatusReopenedNoncompliance:
		return true
	}
	return false
}

// CanTransition reports whether from → to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[Normalize(string(from))] {
		if next == Normalize(string(to)) {
			return true
		}
	}
	return false
}

// Transition validates a status change. It is the single gatekeeper for
// every status write: storage code calls it before touching the row.
func Transition(from, to Status) error {
	if !IsValid(Normalize(string(to))) {
		return fmt.Errorf("%w: unknown target status %q", ErrIllegalTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// IsTerminal reports whether s has no outgoing edges.
func IsTerminal(s Status) bool {
	return len(transitions[Normalize(string(s))]) == 0 && IsValid(Normalize(string(s)))
}

// GenerateRequestCode builds a human-readable code like "REQ-202609-483".
// Codes are decorative (the row id is the identifier), so the random suffix
// is not collision-checked.
func GenerateRequestCode(now time.Time) string {
	return fmt.Sprintf("REQ-%04d%02d-%03d", now.Year(), int(now.Month()), rand.Intn(1000))
}

// RelativeTime buckets the elapsed time since t into a short display string.
func RelativeTime(t, now time.Time) string {
	elapsed := now.Sub(t)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%d min ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(elapsed.Hours()))
	case elapsed < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(elapsed.Hours()/24))
	case elapsed < 30*24*time.Hour:
		return fmt.Sprintf("%d weeks ago", int(elapsed.Hours()/(24*7)))
	default:
		return fmt.Sprintf("%d months ago", int(elapsed.Hours()/(24*30)))
	}
}
