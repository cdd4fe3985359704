package routes

import (
	orderControllers "github.com/EltunLTN/autoparts-api/controllers/order"
	"github.com/EltunLTN/autoparts-api/middleware"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
)

// SetupOrderRoutes registers checkout for signed-in buyers and the gateway callbacks.
func SetupOrderRoutes(r *gin.Engine, d Deps) {
	checkout := r.Group("/api")
	checkout.Use(middleware.ValidateToken, middleware.RequireRole(models.RoleUser, models.RoleAdmin))
	{
		checkout.POST("/checkout", orderControllers.StripeCheckout(d.DB, d.Stripe, d.Events))
		checkout.POST("/paytr/checkout", orderControllers.PayTRCheckout(d.DB, d.PayTR, d.Events))
	}

	webhooks := r.Group("/webhooks")
	{
		// Signature checks happen in middleware; handlers only see verified payloads.
		webhooks.POST("/stripe",
			middleware.StripeWebhookAuth(d.Config.StripeWebhookSecret),
			orderControllers.StripeWebhook(d.DB, d.Events),
		)
		webhooks.POST("/paytr",
			middleware.PayTRCallbackAuth(d.Config.PayTRKey, d.Config.PayTRSalt),
			orderControllers.PayTRCallback(d.DB, d.Events),
		)
	}
}
