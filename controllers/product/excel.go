package productcontroller

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// Spreadsheet columns shared by import and export.
var excelColumns = []string{
	"ID", "Title", "Description", "Price", "Discount", "SKU", "Stock", "Condition",
	"CarMake", "CarModel", "YearFrom", "YearTo", "MainImage", "Category", "Brand", "IsActive",
}

const (
	colID = iota
	colTitle
	colDescription
	colPrice
	colDiscount
	colSKU
	colStock
	colCondition
	colCarMake
	colCarModel
	colYearFrom
	colYearTo
	colMainImage
	colCategory
	colBrand
	colIsActive
)

type importResult struct {
	Created int
	Updated int
	Skipped int
}

func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		res, err := importRows(db, xlFile.Sheets[0])
		if err != nil {
			log.Printf("❌ Product import failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import products"})
			return
		}

		log.Printf("📥 Product import: %d created, %d updated, %d skipped", res.Created, res.Updated, res.Skipped)
		c.JSON(http.StatusOK, gin.H{
			"message":       "Products imported successfully",
			"created_count": res.Created,
			"updated_count": res.Updated,
			"skipped_count": res.Skipped,
		})
	}
}

// importRows upserts one product per data row. Rows with an ID update that
// product; rows without one create a new product.
func importRows(db *gorm.DB, sheet *xlsx.Sheet) (importResult, error) {
	var res importResult
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := 1; i < len(sheet.Rows); i++ {
			row := sheet.Rows[i]
			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			title := get(colTitle)
			slug := utils.Slugify(title)
			price, perr := strconv.ParseFloat(get(colPrice), 64)
			if slug == "" || perr != nil || price <= 0 {
				res.Skipped++
				continue
			}

			var product models.Product
			isNew := true
			if idStr := get(colID); idStr != "" {
				id, err := strconv.ParseUint(idStr, 10, 64)
				if err != nil {
					res.Skipped++
					continue
				}
				err = tx.First(&product, id).Error
				switch {
				case err == nil:
					isNew = false
				case !errors.Is(err, gorm.ErrRecordNotFound):
					return err
				}
			}
			if isNew {
				product = models.Product{IsActive: true, Condition: models.ConditionNew}
			}

			product.Title = title
			product.Slug = slug
			product.Price = price
			if v := get(colDescription); v != "" || isNew {
				product.Description = v
			}
			if d, err := strconv.ParseFloat(get(colDiscount), 64); err == nil && d >= 0 && d <= 100 {
				product.Discount = d
			}
			product.SKU = get(colSKU)
			if s, err := strconv.Atoi(get(colStock)); err == nil && s >= 0 {
				product.Stock = s
			}
			if cond := models.Condition(strings.ToUpper(get(colCondition))); cond.Valid() {
				product.Condition = cond
			}
			product.CarMake = get(colCarMake)
			product.CarModel = get(colCarModel)
			product.YearFrom = parseYear(get(colYearFrom))
			product.YearTo = parseYear(get(colYearTo))
			product.MainImage = get(colMainImage)
			if active, err := strconv.ParseBool(get(colIsActive)); err == nil {
				product.IsActive = active
			}

			dup, err := slugTaken(tx, product.Slug, product.ID)
			if err != nil {
				return err
			}
			if dup {
				res.Skipped++
				continue
			}

			cat, err := categoryByName(tx, get(colCategory))
			if err != nil {
				return err
			}
			product.CategoryID = cat
			brand, err := brandByName(tx, get(colBrand))
			if err != nil {
				return err
			}
			product.BrandID = brand

			product.Category, product.Brand = nil, nil
			if err := tx.Save(&product).Error; err != nil {
				return err
			}
			if isNew {
				res.Created++
			} else {
				res.Updated++
			}
		}
		return nil
	})
	return res, err
}

func parseYear(s string) *int {
	y, err := strconv.Atoi(s)
	if err != nil || y < 1900 || y > 2100 {
		return nil
	}
	return &y
}

// categoryByName finds a category by slug or name, creating it if missing.
// An empty name resolves to the fallback category.
func categoryByName(tx *gorm.DB, name string) (uint, error) {
	if name == "" {
		return resolveCategory(tx, nil)
	}
	slug := utils.Slugify(name)
	if slug == "" {
		return resolveCategory(tx, nil)
	}
	var cat models.Category
	err := tx.Where("slug = ? OR name = ?", slug, name).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cat = models.Category{Name: name, Slug: slug}
		err = tx.Create(&cat).Error
	}
	return cat.ID, err
}

func brandByName(tx *gorm.DB, name string) (uint, error) {
	if name == "" {
		return resolveBrand(tx, nil)
	}
	slug := utils.Slugify(name)
	if slug == "" {
		return resolveBrand(tx, nil)
	}
	var brand models.Brand
	err := tx.Where("slug = ? OR name = ?", slug, name).First(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		brand = models.Brand{Name: name, Slug: slug}
		err = tx.Create(&brand).Error
	}
	return brand.ID, err
}
