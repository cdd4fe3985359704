package routes

import (
	"github.com/EltunLTN/autoparts-api/auth"
	"github.com/EltunLTN/autoparts-api/config"
	"github.com/EltunLTN/autoparts-api/events"
	"github.com/EltunLTN/autoparts-api/notify"
	"github.com/EltunLTN/autoparts-api/payment"
	"github.com/EltunLTN/autoparts-api/valuation"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries everything the handlers need. Optional integrations are nil when not configured.
type Deps struct {
	DB        *gorm.DB
	Config    config.App
	Stripe    payment.CheckoutSessionCreator
	PayTR     payment.PaymentTokenIssuer
	Google    auth.IDTokenVerifier
	Mailer    notify.Mailer
	Events    events.Publisher
	Hub       *events.Hub
	Estimator *valuation.Estimator
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	// 1️⃣ Public Auth routes (no middleware)
	SetupAuthRoutes(r, d)

	// 2️⃣ Storefront: catalog, contact form, valuation
	SetupStoreRoutes(r, d)

	// 3️⃣ User routes (JWT-protected): profile, orders, cart
	SetupUserRoutes(r, d)

	// 4️⃣ Checkout and payment callbacks
	SetupOrderRoutes(r, d)

	// 5️⃣ Admin routes (JWT with ADMIN role)
	SetupAdminRoutes(r, d)
}
