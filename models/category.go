package models

import "time"

type Category struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	ParentID    *uint      `gorm:"index" json:"parentId"`
	Children    []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Products    []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Brand struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`
	Logo        string    `json:"logo"`
	Products    []Product `gorm:"foreignKey:BrandID" json:"products,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Fallback taxonomy used when a product is created without a category or brand.
const (
	DefaultCategoryName = "Diğer"
	DefaultCategorySlug = "diger"
	DefaultBrandName    = "Belirtilmemiş"
	DefaultBrandSlug    = "belirtilmemis"
)
