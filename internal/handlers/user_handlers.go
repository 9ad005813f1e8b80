package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/auth"
	"github.com/JeanDavidVasquez/JESKI-sub003/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Registration & Login ---
//

// RegisterUserInput is the payload for both registration endpoints.
// It is separate from models.User so clients can never set id, role or
// status directly. The role claim itself is assigned later through the
// privileged assign-role call.
type RegisterUserInput struct {
	FullName    string  `json:"fullName" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	PhoneNumber string  `json:"phoneNumber" binding:"required"`
	Department  *string `json:"department,omitempty"`
	CompanyName *string `json:"companyName,omitempty"`
	TaxID       *string `json:"taxId,omitempty"`
}

// registerUser creates the account row. intendedRole is only used for the
// response hint; users.role stays empty until AssignInitialRole runs.
func (h *Handlers) registerUser(c *gin.Context, intendedRole string) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 3. --- Insert User ---
	now := time.Now()
	query := `
		INSERT INTO users
		(role, status, email, password_hash, full_name, phone_number, department, company_name, tax_id, created_at, updated_at, version)
		VALUES ('', 'active', ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`

	result, err := h.DB.Exec(query,
		input.Email, password.Hash, input.FullName, input.PhoneNumber,
		input.Department, input.CompanyName, input.TaxID, now, now)
	if err != nil {
		// Most likely the unique email index fired.
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}
	userID, _ := result.LastInsertId()

	// 4. --- Issue Token ---
	// The client immediately calls assign-role with this token plus the
	// app integrity attestation.
	token, err := auth.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Account created. Role assignment pending.",
		"userId":       userID,
		"intendedRole": intendedRole,
		"token":        token,
	})
}

// RegisterRequester is the handler for POST /v1/register/solicitante
func (h *Handlers) RegisterRequester(c *gin.Context) {
	h.registerUser(c, models.RoleRequester)
}

// RegisterSupplier is the handler for POST /v1/register/proveedor
func (h *Handlers) RegisterSupplier(c *gin.Context) {
	h.registerUser(c, models.RoleSupplier)
}

// LoginInput is the payload for POST /v1/login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Look Up User ---
	var user models.User
	query := `SELECT id, role, status, email, password_hash, full_name FROM users WHERE email = ?`
	err := h.DB.QueryRow(query, input.Email).Scan(
		&user.ID, &user.Role, &user.Status, &user.Email, &user.PasswordHash, &user.FullName)
	if err != nil {
		if err == sql.ErrNoRows {
			// Same message as a wrong password, so the endpoint does not
			// leak which emails exist.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	// 3. --- Check Password ---
	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify password"})
		return
	}
	if !matches {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// 4. --- Issue Token ---
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"role":     user.Role,
			"email":    user.Email,
			"fullName": user.FullName,
		},
	})
}
