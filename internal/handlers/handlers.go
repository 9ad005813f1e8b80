package handlers

import (
	"database/sql"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/email"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB     *sql.DB       // Primary connection pool
	Mailer *email.Mailer // Best-effort SMTP transport
}
