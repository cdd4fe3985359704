package auth

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminCredentials come from ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_RESET_SECRET.
type AdminCredentials struct {
	Email       string
	Password    string
	ResetSecret string
}

// GET /api/admin/reset-password?secret=...
// Restores the admin account from the environment, creating it if it was deleted.
func ResetAdminPassword(db *gorm.DB, creds AdminCredentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		if creds.ResetSecret == "" || creds.Email == "" || creds.Password == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin reset is not configured"})
			return
		}
		secret := c.Query("secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(creds.ResetSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		hash, err := HashPassword(creds.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		var admin models.User
		err = db.Where("email = ?", creds.Email).First(&admin).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			admin = models.User{
				Email:    creds.Email,
				Name:     "Admin",
				Password: hash,
				Role:     models.RoleAdmin,
				Provider: "credentials",
			}
			if err := db.Create(&admin).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin"})
				return
			}
			log.Printf("👤 Admin account recreated: %s", creds.Email)
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Admin created", "email": admin.Email})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		if err := db.Model(&admin).Updates(map[string]interface{}{
			"password": hash,
			"role":     models.RoleAdmin,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
			return
		}
		log.Printf("🔑 Admin password reset: %s", creds.Email)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset", "email": admin.Email})
	}
}
