package cartControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/EltunLTN/autoparts-api/middleware"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CartItemInput struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type QuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func cartResponse(cart *models.Cart) gin.H {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return gin.H{
		"id":         cart.ID,
		"items":      items,
		"totalItems": cart.TotalItems(),
		"totalPrice": cart.TotalPrice(),
	}
}

// loadCart resolves the cart of whoever the token belongs to, user or guest.
func loadCart(c *gin.Context, db *gorm.DB) (*models.Cart, bool) {
	ownerID := middleware.CurrentUserID(c)
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	cart, err := models.LoadCart(db, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return nil, false
	}
	return cart, true
}

func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return 0, false
	}
	return uint(id), true
}

func findCartItem(cart *models.Cart, productID uint) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}

// GET /cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, ok := loadCart(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// POST /cart/items
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var product models.Product
		if err := db.Where("id = ? AND is_active = ?", input.ProductID, true).First(&product).Error; err != nil {
			status := http.StatusInternalServerError
			errMsg := "Failed to validate product"
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = http.StatusBadRequest
				errMsg = "Product does not exist"
			}
			c.JSON(status, gin.H{"error": errMsg})
			return
		}

		cart, ok := loadCart(c, db)
		if !ok {
			return
		}

		want := input.Quantity
		if existing := findCartItem(cart, product.ID); existing != nil {
			want += existing.Quantity
		}
		if want > product.Stock {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Only %d of %s in stock", product.Stock, product.Title)})
			return
		}

		cart.AddItem(models.NewCartItem(product, input.Quantity))
		if err := models.SaveCart(db, cart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// PUT /cart/items/:productId; a quantity of zero or less removes the line.
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}
		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, ok := loadCart(c, db)
		if !ok {
			return
		}
		if findCartItem(cart, productID) == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
			return
		}

		if *input.Quantity > 0 {
			var product models.Product
			if err := db.First(&product, productID).Error; err == nil && *input.Quantity > product.Stock {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Only %d of %s in stock", product.Stock, product.Title)})
				return
			}
		}

		cart.UpdateQuantity(productID, *input.Quantity)
		if err := models.SaveCart(db, cart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// DELETE /cart/items/:productId
func RemoveCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}
		cart, ok := loadCart(c, db)
		if !ok {
			return
		}
		if !cart.RemoveItem(productID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
			return
		}
		if err := models.SaveCart(db, cart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// DELETE /cart
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, ok := loadCart(c, db)
		if !ok {
			return
		}
		cart.Clear()
		if err := models.SaveCart(db, cart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}
