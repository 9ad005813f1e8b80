package handlers

import (
	"crypto/subtle"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Privileged Role Assignment (one-shot) ---
//
// The only endpoint with an explicit precondition check and an audit
// trail. A user gets a role exactly once, right after account creation,
// and only when the calling app presents an integrity attestation.
//

// AssignRoleInput is the payload for POST /v1/auth/assign-role
type AssignRoleInput struct {
	Role string `json:"role" binding:"required,oneof=solicitante gestor proveedor"`
}

// AssignInitialRole is the handler for POST /v1/auth/assign-role
func (h *Handlers) AssignInitialRole(c *gin.Context) {
	// 1. --- Check App Integrity Attestation ---
	// Requests without the attestation header fail closed, before any
	// payload inspection or DB work.
	attestation := c.GetHeader("X-App-Check")
	secret := os.Getenv("APP_CHECK_SECRET")
	if attestation == "" || secret == "" ||
		subtle.ConstantTimeCompare([]byte(attestation), []byte(secret)) != 1 {
		c.JSON(http.StatusPreconditionFailed, gin.H{
			"error": "App integrity attestation missing or invalid",
			"code":  "failed-precondition",
		})
		return
	}

	// 2. --- Get User & Bind Input ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var input AssignRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Begin Transaction ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// 4. --- Reject Re-Assignment ---
	// Lock the row and check the current claim. There is deliberately no
	// re-assignment path in this function.
	var currentRole string
	err = tx.QueryRow("SELECT role FROM users WHERE id = ? FOR UPDATE", userID).Scan(&currentRole)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check current role"})
		return
	}
	if currentRole != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "User already has a role assigned"})
		return
	}

	// 5. --- Set the Claim ---
	now := time.Now()
	supplierStatus := sql.NullString{}
	if input.Role == models.RoleSupplier {
		supplierStatus = sql.NullString{String: "pending_evaluation", Valid: true}
	}
	_, err = tx.Exec(
		"UPDATE users SET role = ?, supplier_status = ?, updated_at = ?, version = version + 1 WHERE id = ?",
		input.Role, supplierStatus, now, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign role"})
		return
	}

	// 6. --- Append Audit Entry ---
	detail := fmt.Sprintf("role %q assigned to user %d", input.Role, userID)
	_, err = tx.Exec(
		"INSERT INTO audit_logs (actor_id, action, detail, created_at) VALUES (?, 'assign_initial_role', ?, ?)",
		userID, detail, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write audit log"})
		return
	}

	// 7. --- Commit ---
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Role %q assigned successfully", input.Role),
	})
}
