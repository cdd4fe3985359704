package productcontroller

import (
	"errors"
	"net/http"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProductPatch carries only the fields an admin wants to change.
type ProductPatch struct {
	Title       *string  `json:"title" binding:"omitempty,min=3"`
	Description *string  `json:"description" binding:"omitempty,min=10"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Discount    *float64 `json:"discount" binding:"omitempty,gte=0,lte=100"`
	SKU         *string  `json:"sku"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	Condition   *string  `json:"condition" binding:"omitempty,condition"`
	CategoryID  *uint    `json:"categoryId"`
	BrandID     *uint    `json:"brandId"`
	CarMake     *string  `json:"carMake"`
	CarModel    *string  `json:"carModel"`
	YearFrom    *int     `json:"yearFrom" binding:"omitempty,gte=1900,lte=2100"`
	YearTo      *int     `json:"yearTo" binding:"omitempty,gte=1900,lte=2100"`
	MainImage   *string  `json:"mainImage" binding:"omitempty,url"`
	IsActive    *bool    `json:"isActive"`
}

func (p ProductPatch) apply(product *models.Product) {
	if p.Title != nil {
		product.Title = *p.Title
		product.Slug = utils.Slugify(*p.Title)
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Discount != nil {
		product.Discount = *p.Discount
	}
	if p.SKU != nil {
		product.SKU = *p.SKU
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Condition != nil && *p.Condition != "" {
		product.Condition = models.Condition(*p.Condition)
	}
	if p.CarMake != nil {
		product.CarMake = *p.CarMake
	}
	if p.CarModel != nil {
		product.CarModel = *p.CarModel
	}
	if p.YearFrom != nil {
		product.YearFrom = p.YearFrom
	}
	if p.YearTo != nil {
		product.YearTo = p.YearTo
	}
	if p.MainImage != nil {
		product.MainImage = *p.MainImage
	}
	if p.IsActive != nil {
		product.IsActive = *p.IsActive
	}
}

func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var patch ProductPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var product models.Product
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&product, id).Error; err != nil {
				return err
			}
			patch.apply(&product)
			if product.YearFrom != nil && product.YearTo != nil && *product.YearFrom > *product.YearTo {
				return errYearRange
			}
			if patch.Title != nil {
				if product.Slug == "" {
					return errEmptySlug
				}
				dup, err := slugTaken(tx, product.Slug, product.ID)
				if err != nil {
					return err
				}
				if dup {
					return errDuplicateTitle
				}
			}
			var err error
			if patch.CategoryID != nil {
				if product.CategoryID, err = resolveCategory(tx, patch.CategoryID); err != nil {
					return err
				}
			}
			if patch.BrandID != nil {
				if product.BrandID, err = resolveBrand(tx, patch.BrandID); err != nil {
					return err
				}
			}
			product.Category, product.Brand = nil, nil
			return tx.Save(&product).Error
		})
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		case errors.Is(err, errYearRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			writeError(c, err, "Failed to update product")
			return
		}

		db.Preload("Category").Preload("Brand").First(&product, product.ID)
		c.JSON(http.StatusOK, models.NewProductView(product))
	}
}

var errYearRange = errors.New("yearFrom must not be after yearTo")
