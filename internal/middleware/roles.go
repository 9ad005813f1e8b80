package middleware

import (
	"database/sql"
	"net/http"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Role-Based Middleware ---
//
// These middleware functions are designed to be USED *AFTER*
// the main AuthMiddleware(). They read the 'userID' from the context,
// query the DB for that user's role, and then enforce role permissions.
//

// queryUserRole is a helper to get the user's role from the DB.
func queryUserRole(db *sql.DB, userID int64) (string, error) {
	var role string
	err := db.QueryRow("SELECT role FROM users WHERE id = ?", userID).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}

// requireRole builds a middleware that lets through only the listed roles.
func requireRole(db *sql.DB, message string, allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get userID from AuthMiddleware
		userIDRaw, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			c.Abort()
			return
		}
		userID := userIDRaw.(int64)

		// 2. Query DB for user's role
		role, err := queryUserRole(db, userID)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			}
			c.Abort()
			return
		}

		// 3. Check permission
		for _, a := range allowed {
			if role == a {
				c.Set("userRole", role)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": message})
		c.Abort()
	}
}

// RequesterMiddleware checks for the 'solicitante' role.
func RequesterMiddleware(db *sql.DB) gin.HandlerFunc {
	return requireRole(db, "Access denied: Requester role required", models.RoleRequester)
}

// ManagerMiddleware checks for the 'gestor' role.
func ManagerMiddleware(db *sql.DB) gin.HandlerFunc {
	return requireRole(db, "Access denied: Manager role required", models.RoleManager)
}

// SupplierMiddleware checks for the 'proveedor' role.
func SupplierMiddleware(db *sql.DB) gin.HandlerFunc {
	return requireRole(db, "Access denied: Supplier role required", models.RoleSupplier)
}
