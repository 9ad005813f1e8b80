package main

import (
	"log"
	"os"
	"time"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/database"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/email"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/handlers"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/routes"
	"github.com/joho/godotenv"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. --- Mail Transport ---
	// Unconfigured SMTP degrades to logged no-ops; it never blocks startup.
	mailer := email.NewMailerFromEnv()

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:     db,
		Mailer: mailer,
	}

	// 3. --- Background Worker ---
	// Sweeps quotation invitations whose deadline passed while still
	// unanswered. The interval is env-tunable for testing.
	interval := time.Hour
	if raw := os.Getenv("INVITATION_SWEEP_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			interval = parsed
		}
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Println("Background Worker Started: Monitoring for overdue quotation invitations...")
		for range ticker.C {
			app.ProcessOverdueInvitations()
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = ":8080"
	}
	log.Printf("Starting JESKI Procurement API server on %s...", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
