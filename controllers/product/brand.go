package productcontroller

import (
	"net/http"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetBrands returns brands by name with how many products each carries.
func GetBrands(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var brands []models.Brand
		if err := db.Order("name ASC").Find(&brands).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch brands"})
			return
		}
		counts, err := productCounts(db, "brand_id")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}
		out := make([]gin.H, 0, len(brands))
		for _, b := range brands {
			out = append(out, gin.H{
				"id": b.ID, "name": b.Name, "slug": b.Slug, "description": b.Description,
				"logo": b.Logo, "productCount": counts[b.ID],
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

func CreateBrand(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input TaxonomyInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		brand := models.Brand{
			Name:        input.Name,
			Slug:        utils.Slugify(input.Name),
			Description: input.Description,
			Logo:        input.Image,
		}
		if !nameAvailable(c, db, &models.Brand{}, "Brand", brand.Name, brand.Slug, 0) {
			return
		}
		if err := db.Create(&brand).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create brand"})
			return
		}
		c.JSON(http.StatusCreated, brand)
	}
}

func UpdateBrand(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var brand models.Brand
		if err := db.First(&brand, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
			return
		}
		var input TaxonomyInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slug := utils.Slugify(input.Name)
		if !nameAvailable(c, db, &models.Brand{}, "Brand", input.Name, slug, brand.ID) {
			return
		}
		brand.Name = input.Name
		brand.Slug = slug
		brand.Description = input.Description
		brand.Logo = input.Image

		if err := db.Save(&brand).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update brand"})
			return
		}
		c.JSON(http.StatusOK, brand)
	}
}

func DeleteBrand(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			var brand models.Brand
			if err := tx.First(&brand, id).Error; err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.Product{}).Where("brand_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return inUseError{what: "brand", count: count}
			}
			return tx.Delete(&brand).Error
		})
		respondDelete(c, err, "Brand")
	}
}
