package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/JeanDavidVasquez/JESKI-sub003/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

// AddNotification is an internal helper used by the lifecycle handlers.
// It is not a handler itself. It must be called from within a database
// transaction so the notification commits atomically with the status
// change that triggered it. Email dispatch stays outside, after commit.
func (h *Handlers) AddNotification(tx *sql.Tx, userID int64, notifType, title, message string, relatedID int64, relatedType string) error {
	var nullRelatedID sql.NullInt64
	var nullRelatedType sql.NullString
	if relatedID != 0 {
		nullRelatedID = sql.NullInt64{Int64: relatedID, Valid: true}
		nullRelatedType = sql.NullString{String: relatedType, Valid: true}
	}

	query := `
		INSERT INTO notifications
		(user_id, type, title, message, related_id, related_type, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`

	_, err := tx.Exec(query, userID, notifType, title, message, nullRelatedID, nullRelatedType, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// GetMyNotifications is the handler for GET /v1/notifications
// It retrieves notifications for the logged-in user, unread and newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	// 1. --- Get User ID ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	// 2. --- Query Database ---
	query := `
		SELECT id, user_id, type, title, message, related_id, related_type, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY is_read ASC, created_at DESC
		LIMIT 50` // Limit to 50 to avoid performance issues

	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	// 3. --- Scan Rows into Slice ---
	notifications := []*models.Notification{}
	for rows.Next() {
		var notif models.Notification
		if err := rows.Scan(
			&notif.ID,
			&notif.UserID,
			&notif.Type,
			&notif.Title,
			&notif.Message,
			&notif.RelatedID,
			&notif.RelatedType,
			&notif.IsRead,
			&notif.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan notification row"})
			return
		}
		notifications = append(notifications, &notif)
	}

	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating notification rows"})
		return
	}

	// 4. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
	})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	// 1. --- Get IDs ---
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)
	notificationID := c.Param("id")

	// 2. --- Execute Update ---
	// The WHERE clause enforces ownership so a user cannot mark another
	// user's notifications as read.
	query := `
		UPDATE notifications
		SET is_read = 1
		WHERE id = ? AND user_id = ?`

	result, err := h.DB.Exec(query, notificationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	// 3. --- Check Rows Affected ---
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check affected rows"})
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found or you do not have permission to update it"})
		return
	}

	// 4. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
	})
}
