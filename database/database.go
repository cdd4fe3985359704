package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/EltunLTN/autoparts-api/config"
	"github.com/EltunLTN/autoparts-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects with the configured driver. SQLite is meant for local development.
func Open(cfg config.App) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.GuestUser{},
		&models.Category{},
		&models.Brand{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Contact{},
		&models.Upload{},
	)
}

// SeedAdmin creates an admin account when none exists yet.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return errors.New("admin email and password are required")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:    email,
		Name:     "Admin",
		Password: string(hash),
		Role:     models.RoleAdmin,
		Provider: "credentials",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("👤 Default admin created: %s", email)
	return nil
}

// DefaultCategory returns the fallback category, creating it on first use.
func DefaultCategory(db *gorm.DB) (models.Category, error) {
	cat := models.Category{Name: models.DefaultCategoryName, Slug: models.DefaultCategorySlug}
	err := db.Where(models.Category{Slug: models.DefaultCategorySlug}).
		Attrs(models.Category{Name: models.DefaultCategoryName}).
		FirstOrCreate(&cat).Error
	return cat, err
}

// DefaultBrand returns the fallback brand, creating it on first use.
func DefaultBrand(db *gorm.DB) (models.Brand, error) {
	brand := models.Brand{Name: models.DefaultBrandName, Slug: models.DefaultBrandSlug}
	err := db.Where(models.Brand{Slug: models.DefaultBrandSlug}).
		Attrs(models.Brand{Name: models.DefaultBrandName}).
		FirstOrCreate(&brand).Error
	return brand, err
}
