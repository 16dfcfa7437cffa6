package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itsNitinkumar/Skillarious-Backend/database"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/users"
)

// GetCurrentUser returns the identity record for the bearer token's user.
// Account lifecycle lives in the auth service; this is a read-only view.
func GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}
