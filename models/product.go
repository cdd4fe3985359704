package models

import (
	"time"

	"github.com/EltunLTN/autoparts-api/pricing"
)

type Condition string

const (
	ConditionNew  Condition = "NEW"
	ConditionUsed Condition = "USED"
)

func (c Condition) Valid() bool {
	return c == ConditionNew || c == ConditionUsed
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Discount    float64   `gorm:"default:0" json:"discount"` // percent
	SKU         string    `gorm:"index" json:"sku"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	Condition   Condition `gorm:"type:VARCHAR(4);default:'NEW'" json:"condition"`
	CarMake     string    `json:"carMake"`
	CarModel    string    `json:"carModel"`
	YearFrom    *int      `json:"yearFrom"`
	YearTo      *int      `json:"yearTo"`
	MainImage   string    `json:"mainImage"`
	// No column default: gorm would skip an explicit false on insert.
	IsActive   bool      `gorm:"not null;index" json:"isActive"`
	Views      int       `gorm:"default:0" json:"views"`
	CategoryID uint      `gorm:"index;not null" json:"categoryId"`
	Category   *Category `json:"category,omitempty"`
	BrandID    uint      `gorm:"index;not null" json:"brandId"`
	Brand      *Brand    `json:"brand,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FinalPrice is the list price after the percentage discount.
func (p Product) FinalPrice() float64 {
	return pricing.FinalPrice(p.Price, p.Discount)
}

// ProductView is what the storefront serialises: the product plus its discounted price.
type ProductView struct {
	Product
	FinalPrice float64 `json:"finalPrice"`
}

func NewProductView(p Product) ProductView {
	return ProductView{Product: p, FinalPrice: p.FinalPrice()}
}

func NewProductViews(products []Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, NewProductView(p))
	}
	return views
}
