package models

import (
	"time"

	"github.com/EltunLTN/autoparts-api/pricing"
	"gorm.io/gorm"
)

// Cart belongs to either a registered user or a guest; OwnerID holds whichever id the token carries.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OwnerID   string     `gorm:"uniqueIndex;not null" json:"ownerId"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"index" json:"-"`
	ProductID uint      `json:"productId"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Image     string    `json:"image"`
	Price     float64   `json:"price"`
	Discount  float64   `json:"discount"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// NewCartItem snapshots a product into a cart line.
func NewCartItem(p Product, quantity int) CartItem {
	return CartItem{
		ProductID: p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Image:     p.MainImage,
		Price:     p.Price,
		Discount:  p.Discount,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
}

// AddItem merges into an existing line for the same product, otherwise appends.
func (c *Cart) AddItem(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].Price = item.Price
			c.Items[i].Discount = item.Discount
			c.Items[i].AddedAt = item.AddedAt
			return
		}
	}
	c.Items = append(c.Items, item)
}

// RemoveItem drops the line for productID and reports whether one existed.
func (c *Cart) RemoveItem(productID uint) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (c *Cart) UpdateQuantity(productID uint, quantity int) bool {
	if quantity <= 0 {
		return c.RemoveItem(productID)
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

func (c *Cart) Clear() {
	c.Items = nil
}

// TotalPrice sums the discounted line totals.
func (c *Cart) TotalPrice() float64 {
	lines := make([]float64, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, pricing.LineTotal(it.Price, it.Discount, it.Quantity))
	}
	return pricing.Sum(lines...)
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// LoadCart returns the owner's cart with items, creating an empty one on first use.
func LoadCart(db *gorm.DB, ownerID string) (*Cart, error) {
	cart := Cart{OwnerID: ownerID}
	if err := db.Where(Cart{OwnerID: ownerID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	if err := db.Where("cart_id = ?", cart.ID).Order("id").Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart replaces the stored lines with the in-memory ones.
func SaveCart(db *gorm.DB, cart *Cart) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		return tx.Create(&cart.Items).Error
	})
}
