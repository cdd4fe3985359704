package orderControllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/EltunLTN/autoparts-api/events"
	"github.com/EltunLTN/autoparts-api/middleware"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/payment"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CheckoutItem struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	CustomerName    string         `json:"customerName" binding:"required"`
	CustomerEmail   string         `json:"customerEmail" binding:"required,email"`
	CustomerPhone   string         `json:"customerPhone" binding:"required"`
	ShippingAddress string         `json:"shippingAddress" binding:"required"`
	ShippingCity    string         `json:"shippingCity" binding:"required"`
	ShippingZip     string         `json:"shippingZip"`
	Notes           string         `json:"notes"`
}

func (r CheckoutRequest) toInput(userID string, method models.PaymentMethod) PlaceOrderInput {
	items := make([]OrderItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return PlaceOrderInput{
		UserID:          userID,
		Items:           items,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		ShippingAddress: r.ShippingAddress,
		ShippingCity:    r.ShippingCity,
		ShippingZip:     r.ShippingZip,
		ShippingCountry: payment.PayTRCountry,
		Notes:           r.Notes,
		PaymentMethod:   method,
	}
}

// PlaceOrderError maps order errors to an HTTP status and message.
func PlaceOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrProductsNotFound), errors.Is(err, ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ Failed to place order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
	}
}

// OrderPayload is the event body published for order changes.
func OrderPayload(o models.Order) gin.H {
	return gin.H{
		"orderId":       o.ID,
		"orderNumber":   o.OrderNumber,
		"userId":        o.UserID,
		"status":        o.Status,
		"total":         o.Total,
		"paymentMethod": o.PaymentMethod,
		"customerName":  o.CustomerName,
		"customerEmail": o.CustomerEmail,
	}
}

// Abandon cancels an order whose follow-up step failed, which also releases its stock.
func Abandon(ctx context.Context, db *gorm.DB, pub events.Publisher, order models.Order) {
	cancelled, changed, err := CancelPending(ctx, db, order.ID)
	if err != nil {
		log.Printf("❌ Failed to cancel abandoned order %s: %v", order.OrderNumber, err)
		return
	}
	if changed {
		events.Emit(ctx, pub, events.OrderCancelled, OrderPayload(cancelled))
	}
}

// StripeCheckout places the order and opens a Stripe Checkout session for it.
func StripeCheckout(db *gorm.DB, gateway payment.CheckoutSessionCreator, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gateway == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stripe is not configured"})
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		order, err := PlaceOrder(ctx, db, req.toInput(middleware.CurrentUserID(c), models.PaymentMethodStripe))
		if err != nil {
			PlaceOrderError(c, err)
			return
		}

		session, err := gateway.CreateCheckoutSession(ctx, order)
		if err != nil {
			log.Printf("❌ Stripe session for %s failed: %v", order.OrderNumber, err)
			Abandon(ctx, db, pub, order)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway error"})
			return
		}

		if err := AttachPayment(ctx, db, &order, models.PaymentMethodStripe, session.ID); err != nil {
			log.Printf("❌ Failed to store Stripe session for %s: %v", order.OrderNumber, err)
			Abandon(ctx, db, pub, order)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save payment session"})
			return
		}

		log.Printf("🛒 Order %s placed, Stripe session %s", order.OrderNumber, session.ID)
		events.Emit(ctx, pub, events.OrderCreated, OrderPayload(order))

		c.JSON(http.StatusOK, gin.H{
			"sessionId":   session.ID,
			"url":         session.URL,
			"orderNumber": order.OrderNumber,
		})
	}
}

// PayTRCheckout places the order and requests a PayTR iframe token for it.
func PayTRCheckout(db *gorm.DB, issuer payment.PaymentTokenIssuer, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		if issuer == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "PayTR is not configured"})
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		order, err := PlaceOrder(ctx, db, req.toInput(middleware.CurrentUserID(c), models.PaymentMethodPayTR))
		if err != nil {
			PlaceOrderError(c, err)
			return
		}

		token, err := issuer.IssueToken(ctx, order, c.ClientIP())
		if err != nil {
			Abandon(ctx, db, pub, order)
			if errors.Is(err, payment.ErrPayTRRefused) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Printf("❌ PayTR token for %s failed: %v", order.OrderNumber, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway error"})
			return
		}

		if err := AttachPayment(ctx, db, &order, models.PaymentMethodPayTR, token); err != nil {
			log.Printf("❌ Failed to store PayTR token for %s: %v", order.OrderNumber, err)
			Abandon(ctx, db, pub, order)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save payment token"})
			return
		}

		log.Printf("🛒 Order %s placed, PayTR token issued", order.OrderNumber)
		events.Emit(ctx, pub, events.OrderCreated, OrderPayload(order))

		c.JSON(http.StatusOK, gin.H{
			"method":      "paytr",
			"token":       token,
			"orderNumber": order.OrderNumber,
			"orderId":     order.ID,
		})
	}
}
