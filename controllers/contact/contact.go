package contactController

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/EltunLTN/autoparts-api/auth"
	orderControllers "github.com/EltunLTN/autoparts-api/controllers/order"
	"github.com/EltunLTN/autoparts-api/events"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/notify"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Orders placed from the contact form ship inside the city by default.
const contactShippingCity = "Bakı"

type ContactItemInput struct {
	ProductID uint    `json:"productId" binding:"required"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price"`
}

type ContactRequest struct {
	Name       string             `json:"name" binding:"required,min=2"`
	Email      string             `json:"email" binding:"required,email"`
	Phone      string             `json:"phone" binding:"required,min=7"`
	Subject    string             `json:"subject" binding:"omitempty,min=3"`
	Message    string             `json:"message" binding:"omitempty,min=10"`
	Address    string             `json:"address"`
	OrderItems []ContactItemInput `json:"orderItems" binding:"omitempty,dive"`
	OrderTotal *float64           `json:"orderTotal"`
}

// findOrCreateCustomer returns the account for email, registering a USER with a random password if needed.
func findOrCreateCustomer(db *gorm.DB, req ContactRequest) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, err
	}

	hashed, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return user, err
	}
	user = models.User{
		Email:    email,
		Name:     req.Name,
		Phone:    req.Phone,
		Password: hashed,
		Role:     models.RoleUser,
		Provider: "credentials",
	}
	if err := db.Create(&user).Error; err != nil {
		return user, err
	}
	log.Printf("👤 Account created for contact order: %s", email)
	return user, nil
}

func placeContactOrder(ctx context.Context, db *gorm.DB, req ContactRequest) (models.Order, error) {
	user, err := findOrCreateCustomer(db, req)
	if err != nil {
		return models.Order{}, err
	}

	items := make([]orderControllers.OrderItemInput, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		items = append(items, orderControllers.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	address := req.Address
	if address == "" {
		address = contactShippingCity
	}
	return orderControllers.PlaceOrder(ctx, db, orderControllers.PlaceOrderInput{
		UserID:          user.ID,
		Items:           items,
		CustomerName:    req.Name,
		CustomerEmail:   user.Email,
		CustomerPhone:   req.Phone,
		ShippingAddress: address,
		ShippingCity:    contactShippingCity,
		Notes:           req.Message,
		PaymentMethod:   models.PaymentMethodContactForm,
	})
}

func contactMail(req ContactRequest, order *models.Order, currency string) notify.ContactMail {
	m := notify.ContactMail{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Subject:  req.Subject,
		Message:  req.Message,
		Currency: currency,
	}
	if order != nil {
		for _, it := range order.Items {
			m.Items = append(m.Items, notify.ContactItem{Title: it.Title, Quantity: it.Quantity, Price: it.UnitPrice()})
		}
		m.Total = order.Total
		m.OrderNumber = order.OrderNumber
	}
	return m
}

// SubmitContact stores a contact message. When the form carries a basket it also
// places a PENDING order for the sender.
func SubmitContact(db *gorm.DB, mailer notify.Mailer, pub events.Publisher, currency string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()

		var order *models.Order
		if len(req.OrderItems) > 0 {
			placed, err := placeContactOrder(ctx, db, req)
			if err != nil {
				orderControllers.PlaceOrderError(c, err)
				return
			}
			order = &placed
		}

		subject := req.Subject
		if subject == "" {
			subject = models.DefaultContactSubject
		}
		contact := models.Contact{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Subject: subject,
			Message: req.Message,
			Status:  models.ContactStatusNew,
		}
		if order != nil {
			contact.OrderID = &order.ID
		}
		if err := db.Create(&contact).Error; err != nil {
			log.Printf("❌ Failed to save contact from %s: %v", req.Email, err)
			if order != nil {
				orderControllers.Abandon(ctx, db, pub, *order)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
			return
		}
		if order != nil {
			log.Printf("🛒 Contact order %s placed by %s", order.OrderNumber, order.CustomerEmail)
			events.Emit(ctx, pub, events.OrderCreated, orderControllers.OrderPayload(*order))
		}

		if mailer != nil {
			if err := mailer.SendContact(ctx, contactMail(req, order, currency)); err != nil {
				log.Printf("⚠️ Contact mail for #%d not sent: %v", contact.ID, err)
			}
		}
		events.Emit(ctx, pub, events.ContactReceived, gin.H{
			"contactId": contact.ID,
			"name":      contact.Name,
			"email":     contact.Email,
			"subject":   contact.Subject,
			"orderId":   contact.OrderID,
		})

		resp := gin.H{
			"success": true,
			"message": "Mesajınız uğurla göndərildi",
			"id":      contact.ID,
		}
		if order != nil {
			resp["orderId"] = order.ID
			resp["orderNumber"] = order.OrderNumber
		}
		c.JSON(http.StatusCreated, resp)
	}
}
