package adminController

import (
	"log"
	"net/http"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetStats returns the dashboard counters. Revenue only counts paid and delivered orders.
func GetStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products, orders, users int64
		var revenue float64

		err := db.Model(&models.Product{}).Count(&products).Error
		if err == nil {
			err = db.Model(&models.Order{}).Count(&orders).Error
		}
		if err == nil {
			err = db.Model(&models.User{}).Count(&users).Error
		}
		if err == nil {
			err = db.Model(&models.Order{}).
				Where("status IN ?", models.RevenueStatuses).
				Select("COALESCE(SUM(total), 0)").
				Scan(&revenue).Error
		}
		if err != nil {
			log.Println("❌ Failed to compute stats:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalProducts": products,
			"totalOrders":   orders,
			"totalUsers":    users,
			"totalRevenue":  revenue,
		})
	}
}

// GetUsers lists accounts newest first.
func GetUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.
			Select("id", "email", "name", "phone", "role", "provider", "created_at").
			Order("created_at desc").
			Find(&users).Error; err != nil {
			log.Println("❌ Failed to fetch users:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

type UpdateRoleInput struct {
	Role string `json:"role" binding:"required"`
}

func UpdateUserRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateRoleInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		role := models.Role(input.Role)
		if !role.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be USER or ADMIN"})
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err := db.Model(&user).Update("role", role).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
			return
		}

		log.Printf("🔑 %s is now %s", user.Email, role)
		c.JSON(http.StatusOK, user)
	}
}
