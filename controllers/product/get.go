package productcontroller

import (
	"errors"
	"net/http"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetProductBySlug serves the product page and counts the view.
// URL param: /api/products/:slug
func GetProductBySlug(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.
			Preload("Category").
			Preload("Brand").
			Where("slug = ? AND is_active = ?", c.Param("slug"), true).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}

		if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error; err == nil {
			product.Views++
		}

		c.JSON(http.StatusOK, models.NewProductView(product))
	}
}
