package orderControllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/EltunLTN/autoparts-api/events"
	"github.com/EltunLTN/autoparts-api/middleware"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"
)

// applyGatewayStatus moves an order after a payment callback and publishes the change.
// Gateway failures only cancel orders still awaiting payment.
// Unknown orders and stale transitions are logged and swallowed so the gateway stops retrying.
func applyGatewayStatus(c *gin.Context, db *gorm.DB, pub events.Publisher, orderID uint, next models.OrderStatus) error {
	change := ChangeStatus
	if next == models.OrderStatusCancelled {
		change = func(ctx context.Context, db *gorm.DB, id uint, _ models.OrderStatus) (models.Order, bool, error) {
			return CancelPending(ctx, db, id)
		}
	}
	order, changed, err := change(c.Request.Context(), db, orderID, next)
	switch {
	case errors.Is(err, ErrOrderNotFound):
		log.Printf("⚠️ Payment callback for unknown order %d", orderID)
		return nil
	case errors.Is(err, ErrInvalidTransition):
		log.Printf("⚠️ Ignoring payment callback: %v", err)
		return nil
	case err != nil:
		return err
	}
	if changed {
		log.Printf("💳 Order %s is now %s", order.OrderNumber, order.Status)
		publishStatus(c, pub, order)
	}
	return nil
}

func publishStatus(c *gin.Context, pub events.Publisher, order models.Order) {
	name := events.OrderStatusChanged
	switch order.Status {
	case models.OrderStatusPaid:
		name = events.OrderPaid
	case models.OrderStatusCancelled:
		name = events.OrderCancelled
	}
	events.Emit(c.Request.Context(), pub, name, OrderPayload(order))
}

// stripeOrderID reads the order id from session metadata, falling back to the stored session id.
func stripeOrderID(db *gorm.DB, session stripe.CheckoutSession) (uint, bool) {
	if raw := session.Metadata["orderId"]; raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return uint(id), true
		}
	}
	var order models.Order
	if err := db.Select("id").Where("payment_ref = ?", session.ID).First(&order).Error; err != nil {
		return 0, false
	}
	return order.ID, true
}

// StripeWebhook handles events verified by middleware.StripeWebhookAuth.
func StripeWebhook(db *gorm.DB, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, ok := middleware.StripeEvent(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing event"})
			return
		}

		var next models.OrderStatus
		switch event.Type {
		case stripe.EventTypeCheckoutSessionCompleted:
			next = models.OrderStatusPaid
		case stripe.EventTypeCheckoutSessionExpired:
			next = models.OrderStatusCancelled
		default:
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout session payload"})
			return
		}
		if next == models.OrderStatusPaid && session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		orderID, found := stripeOrderID(db, session)
		if !found {
			log.Printf("⚠️ Stripe session %s has no matching order", session.ID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		if err := applyGatewayStatus(c, db, pub, orderID, next); err != nil {
			log.Printf("❌ Stripe webhook failed for order %d: %v", orderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// PayTRCallback handles the server-to-server result verified by middleware.PayTRCallbackAuth.
// PayTR expects the literal body "OK" or it keeps retrying.
func PayTRCallback(db *gorm.DB, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid := strings.TrimSpace(c.PostForm("merchant_oid"))
		orderID, err := strconv.ParseUint(oid, 10, 64)
		if err != nil {
			log.Printf("⚠️ PayTR callback with malformed merchant_oid %q", oid)
			c.String(http.StatusOK, "OK")
			return
		}

		next := models.OrderStatusCancelled
		if strings.TrimSpace(c.PostForm("status")) == "success" {
			next = models.OrderStatusPaid
		} else {
			log.Printf("⚠️ PayTR payment failed for order %d: %s", orderID, c.PostForm("failed_reason_msg"))
		}

		if err := applyGatewayStatus(c, db, pub, uint(orderID), next); err != nil {
			log.Printf("❌ PayTR callback failed for order %d: %v", orderID, err)
			c.String(http.StatusInternalServerError, "ERROR")
			return
		}
		c.String(http.StatusOK, "OK")
	}
}
