package productcontroller

import (
	"errors"
	"log"
	"net/http"

	"github.com/EltunLTN/autoparts-api/database"
	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errDuplicateTitle   = errors.New("Product with this title already exists")
	errCategoryNotFound = errors.New("Category not found")
	errBrandNotFound    = errors.New("Brand not found")
	errEmptySlug        = errors.New("Title must contain letters or digits")
)

type ProductInput struct {
	Title       string  `json:"title" binding:"required,min=3"`
	Description string  `json:"description" binding:"required,min=10"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Discount    float64 `json:"discount" binding:"gte=0,lte=100"`
	SKU         string  `json:"sku"`
	Stock       *int    `json:"stock" binding:"required,gte=0"`
	Condition   string  `json:"condition" binding:"condition"`
	CategoryID  *uint   `json:"categoryId"`
	BrandID     *uint   `json:"brandId"`
	CarMake     string  `json:"carMake"`
	CarModel    string  `json:"carModel"`
	YearFrom    *int    `json:"yearFrom" binding:"omitempty,gte=1900,lte=2100"`
	YearTo      *int    `json:"yearTo" binding:"omitempty,gte=1900,lte=2100"`
	MainImage   string  `json:"mainImage" binding:"omitempty,url"`
	IsActive    *bool   `json:"isActive"`
}

// resolveCategory returns the requested category id, or the fallback category when none is given.
func resolveCategory(tx *gorm.DB, id *uint) (uint, error) {
	if id == nil || *id == 0 {
		cat, err := database.DefaultCategory(tx)
		return cat.ID, err
	}
	if err := tx.Select("id").First(&models.Category{}, *id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errCategoryNotFound
		}
		return 0, err
	}
	return *id, nil
}

func resolveBrand(tx *gorm.DB, id *uint) (uint, error) {
	if id == nil || *id == 0 {
		brand, err := database.DefaultBrand(tx)
		return brand.ID, err
	}
	if err := tx.Select("id").First(&models.Brand{}, *id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errBrandNotFound
		}
		return 0, err
	}
	return *id, nil
}

// slugTaken reports whether another product already owns slug.
func slugTaken(tx *gorm.DB, slug string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Product{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count).Error
	return count > 0, err
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, errDuplicateTitle), errors.Is(err, errEmptySlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errCategoryNotFound), errors.Is(err, errBrandNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ %s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.YearFrom != nil && input.YearTo != nil && *input.YearFrom > *input.YearTo {
			c.JSON(http.StatusBadRequest, gin.H{"error": "yearFrom must not be after yearTo"})
			return
		}

		product := models.Product{
			Title:       input.Title,
			Slug:        utils.Slugify(input.Title),
			Description: input.Description,
			Price:       input.Price,
			Discount:    input.Discount,
			SKU:         input.SKU,
			Stock:       *input.Stock,
			Condition:   models.Condition(input.Condition),
			CarMake:     input.CarMake,
			CarModel:    input.CarModel,
			YearFrom:    input.YearFrom,
			YearTo:      input.YearTo,
			MainImage:   input.MainImage,
			IsActive:    true,
		}
		if product.Condition == "" {
			product.Condition = models.ConditionNew
		}
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}

		if product.Slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": errEmptySlug.Error()})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			dup, err := slugTaken(tx, product.Slug, 0)
			if err != nil {
				return err
			}
			if dup {
				return errDuplicateTitle
			}
			if product.CategoryID, err = resolveCategory(tx, input.CategoryID); err != nil {
				return err
			}
			if product.BrandID, err = resolveBrand(tx, input.BrandID); err != nil {
				return err
			}
			return tx.Create(&product).Error
		})
		if err != nil {
			writeError(c, err, "Failed to create product")
			return
		}

		db.Preload("Category").Preload("Brand").First(&product, product.ID)
		log.Printf("🆕 Product %q created", product.Title)
		c.JSON(http.StatusCreated, models.NewProductView(product))
	}
}
