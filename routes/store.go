package routes

import (
	contactController "github.com/EltunLTN/autoparts-api/controllers/contact"
	productcontroller "github.com/EltunLTN/autoparts-api/controllers/product"
	valuationController "github.com/EltunLTN/autoparts-api/controllers/valuation"
	"github.com/gin-gonic/gin"
)

// SetupStoreRoutes registers the public "/api/*" storefront endpoints.
func SetupStoreRoutes(r *gin.Engine, d Deps) {
	api := r.Group("/api")
	{
		// ──────────────── Catalog ────────────────
		api.GET("/products", productcontroller.GetProducts(d.DB))
		api.GET("/products/:slug", productcontroller.GetProductBySlug(d.DB))
		api.GET("/categories", productcontroller.GetCategories(d.DB))
		api.GET("/categories/tree", productcontroller.GetCategoryTree(d.DB))
		api.GET("/brands", productcontroller.GetBrands(d.DB))

		// ──────────────── Contact form ────────────────
		api.POST("/contact", contactController.SubmitContact(d.DB, d.Mailer, d.Events, d.Config.Currency))

		// ──────────────── Car valuation ────────────────
		api.POST("/predict-price", valuationController.PredictPrice(d.Estimator))
	}
}
