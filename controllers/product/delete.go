package productcontroller

import (
	"errors"
	"log"
	"net/http"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DeleteProduct removes a product. Products already referenced by orders are
// deactivated instead so order history keeps its lines.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		deactivated := false
		err := db.Transaction(func(tx *gorm.DB) error {
			var product models.Product
			if err := tx.First(&product, id).Error; err != nil {
				return err
			}
			var ordered int64
			if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&ordered).Error; err != nil {
				return err
			}
			if ordered > 0 {
				deactivated = true
				return tx.Model(&product).Update("is_active", false).Error
			}
			if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&product).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			log.Printf("❌ Failed to delete product %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}

		if deactivated {
			log.Printf("🗄️ Product %d has orders, deactivated instead of deleted", id)
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deactivated": deactivated})
	}
}
