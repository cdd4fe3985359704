package routes

import (
	adminController "github.com/EltunLTN/autoparts-api/controllers/admin"
	orderControllers "github.com/EltunLTN/autoparts-api/controllers/order"
	productcontroller "github.com/EltunLTN/autoparts-api/controllers/product"
	"github.com/EltunLTN/autoparts-api/middleware"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires an ADMIN token.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	db := d.DB
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken, middleware.RequireRole(models.RoleAdmin))
	{
		adminGroup.GET("/stats", adminController.GetStats(db))

		// ─────────── User Management ───────────
		adminGroup.GET("/users", adminController.GetUsers(db))
		adminGroup.PUT("/users/:id/role", adminController.UpdateUserRole(db))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(db))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(db))
			productAdmin.GET("", productcontroller.GetAdminProducts(db))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(db))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(db))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(db))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(db))
			categoryAdmin.PUT("/:id", productcontroller.UpdateCategory(db))
			categoryAdmin.GET("", productcontroller.GetAdminCategories(db))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(db))
		}

		// ─────────── Brand Management ───────────
		brandAdmin := adminGroup.Group("/brands")
		{
			brandAdmin.POST("", productcontroller.CreateBrand(db))
			brandAdmin.PUT("/:id", productcontroller.UpdateBrand(db))
			brandAdmin.GET("", productcontroller.GetBrands(db))
			brandAdmin.DELETE("/:id", productcontroller.DeleteBrand(db))
		}

		// ─────────── Orders ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrders(db))
			orderAdmin.GET("/ws", d.Hub.Handler()) // ?token= since browsers cannot set headers
			orderAdmin.GET("/:id", orderControllers.GetOrderByID(db))
			orderAdmin.PUT("/:id/status", orderControllers.UpdateOrderStatus(db, d.Events))
		}

		// ─────────── Contacts ───────────
		adminGroup.GET("/contacts", adminController.GetContacts(db))
		adminGroup.PUT("/contacts/:id/status", adminController.UpdateContactStatus(db))

		// ─────────── Uploads ───────────
		uploadAdmin := adminGroup.Group("/uploads")
		{
			uploadAdmin.POST("", adminController.UploadImage(db, d.Config.UploadDir, d.Config.PublicURL))
			uploadAdmin.GET("", adminController.GetUploads(db))
			uploadAdmin.DELETE("/:id", adminController.DeleteUpload(db, d.Config.UploadDir))
		}
	}
}
