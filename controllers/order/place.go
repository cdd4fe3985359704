package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/pricing"
	"github.com/EltunLTN/autoparts-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrProductsNotFound  = errors.New("Some products not found")
	ErrInsufficientStock = errors.New("Insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

type PlaceOrderInput struct {
	UserID          string
	Items           []OrderItemInput
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	ShippingCity    string
	ShippingZip     string
	ShippingCountry string
	Notes           string
	PaymentMethod   models.PaymentMethod
}

// mergeItems folds repeated product ids into one line, keeping first-seen order.
func mergeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	index := make(map[uint]int, len(items))
	merged := make([]OrderItemInput, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

// PlaceOrder prices the items from the catalog, reserves stock and inserts a PENDING order in one transaction.
// Stock is taken with a conditional UPDATE so two buyers can never both get the last unit.
func PlaceOrder(ctx context.Context, db *gorm.DB, in PlaceOrderInput) (models.Order, error) {
	items, err := mergeItems(in.Items)
	if err != nil {
		return models.Order{}, err
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	var order models.Order
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products []models.Product
		if err := tx.Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
			return err
		}
		if len(products) != len(ids) {
			return ErrProductsNotFound
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		lines := make([]models.OrderItem, 0, len(items))
		totals := make([]float64, 0, len(items))
		for _, it := range items {
			p := byID[it.ProductID]
			if p.Stock < it.Quantity {
				return fmt.Errorf("%w for %s", ErrInsufficientStock, p.Title)
			}
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", p.ID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w for %s", ErrInsufficientStock, p.Title)
			}

			lineTotal := pricing.LineTotal(p.Price, p.Discount, it.Quantity)
			totals = append(totals, lineTotal)
			lines = append(lines, models.OrderItem{
				ProductID: p.ID,
				Title:     p.Title,
				Quantity:  it.Quantity,
				Price:     p.Price,
				Discount:  p.Discount,
				Total:     lineTotal,
			})
		}

		subtotal := pricing.Sum(totals...)
		country := in.ShippingCountry
		if country == "" {
			country = "Azerbaijan"
		}
		order = models.Order{
			OrderNumber:     utils.NewOrderNumber(time.Now()),
			UserID:          in.UserID,
			Status:          models.OrderStatusPending,
			Subtotal:        subtotal,
			Total:           subtotal,
			CustomerName:    in.CustomerName,
			CustomerEmail:   in.CustomerEmail,
			CustomerPhone:   in.CustomerPhone,
			ShippingAddress: in.ShippingAddress,
			ShippingCity:    in.ShippingCity,
			ShippingZip:     in.ShippingZip,
			ShippingCountry: country,
			Notes:           in.Notes,
			PaymentMethod:   in.PaymentMethod,
			Items:           lines,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ChangeStatus moves an order along its lifecycle. Setting the current status again is a no-op
// (changed == false). Cancelling an order that still holds stock puts the stock back, and a paid
// order empties the buyer's server-side cart.
func ChangeStatus(ctx context.Context, db *gorm.DB, orderID uint, next models.OrderStatus) (models.Order, bool, error) {
	return changeStatus(ctx, db, orderID, next, nil)
}

// CancelPending cancels an order only while it is still awaiting payment.
func CancelPending(ctx context.Context, db *gorm.DB, orderID uint) (models.Order, bool, error) {
	return changeStatus(ctx, db, orderID, models.OrderStatusCancelled, []models.OrderStatus{models.OrderStatusPending})
}

// changeStatus applies next; a non-empty from restricts which current statuses may move.
func changeStatus(ctx context.Context, db *gorm.DB, orderID uint, next models.OrderStatus, from []models.OrderStatus) (order models.Order, changed bool, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		current := order.Status
		if current == next {
			return nil
		}
		if !current.CanTransitionTo(next) || (len(from) > 0 && !slices.Contains(from, current)) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
		}

		if next == models.OrderStatusCancelled && current.HoldsStock() {
			for _, it := range order.Items {
				if err := tx.Model(&models.Product{}).
					Where("id = ?", it.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
					return err
				}
			}
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, current).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d changed concurrently", ErrInvalidTransition, order.ID)
		}

		if next == models.OrderStatusPaid {
			if err := clearCart(tx, order.UserID); err != nil {
				return err
			}
		}

		order.Status = next
		changed = true
		return nil
	})
	return order, changed, err
}

func clearCart(tx *gorm.DB, ownerID string) error {
	return tx.Where("cart_id IN (?)", tx.Model(&models.Cart{}).Select("id").Where("owner_id = ?", ownerID)).
		Delete(&models.CartItem{}).Error
}

// AttachPayment records which gateway handles the order and its session id or token.
func AttachPayment(ctx context.Context, db *gorm.DB, order *models.Order, method models.PaymentMethod, ref string) error {
	if err := db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]interface{}{"payment_method": method, "payment_ref": ref}).Error; err != nil {
		return err
	}
	order.PaymentMethod = method
	order.PaymentRef = ref
	return nil
}
