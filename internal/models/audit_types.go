package models

import (
	"time"
)

// AuditLog is one append-only row in 'audit_logs'. Currently only the
// privileged role-assignment path writes here.
type AuditLog struct {
	ID        int64     `json:"id" db:"id"`
	ActorID   int64     `json:"actorId" db:"actor_id"`
	Action    string    `json:"action" db:"action"`
	Detail    string    `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
