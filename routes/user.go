package routes

import (
	cartControllers "github.com/EltunLTN/autoparts-api/controllers/cart"
	orderControllers "github.com/EltunLTN/autoparts-api/controllers/order"
	userControllers "github.com/EltunLTN/autoparts-api/controllers/user"
	"github.com/EltunLTN/autoparts-api/middleware"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers "/user/*" for accounts and "/cart/*" for accounts and guests.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken, middleware.RequireRole(models.RoleUser, models.RoleAdmin))
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/", userControllers.GetUser(d.DB))    // GET /user/
		userGroup.PUT("/", userControllers.UpdateUser(d.DB)) // PUT /user/

		// ──────────────── Order history ────────────────
		userGroup.GET("/orders", orderControllers.GetMyOrders(d.DB))
		userGroup.GET("/orders/:number", orderControllers.GetMyOrder(d.DB))
	}

	// Guests keep a cart too, keyed by the id in their token.
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ValidateToken, middleware.RequireRole(models.RoleUser, models.RoleAdmin, models.RoleGuest))
	{
		cartGroup.GET("", cartControllers.GetCart(d.DB))
		cartGroup.DELETE("", cartControllers.ClearCart(d.DB))
		cartGroup.POST("/items", cartControllers.AddCartItem(d.DB))
		cartGroup.PUT("/items/:productId", cartControllers.UpdateCartItem(d.DB))
		cartGroup.DELETE("/items/:productId", cartControllers.RemoveCartItem(d.DB))
	}
}
