package productcontroller

import (
	"math"
	"net/http"
	"strings"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 24
	maxPageSize     = 100
)

type ProductQuery struct {
	Category  string   `form:"category"`
	Brand     string   `form:"brand"`
	Search    string   `form:"search"`
	Q         string   `form:"q"`
	MinPrice  *float64 `form:"minPrice"`
	MaxPrice  *float64 `form:"maxPrice"`
	Condition string   `form:"condition"`
	Sort      string   `form:"sort"`
	Page      int      `form:"page"`
	Limit     int      `form:"limit"`
}

func (q *ProductQuery) normalize() {
	if q.Search == "" {
		q.Search = q.Q
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Condition = strings.ToUpper(strings.TrimSpace(q.Condition))
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
}

func sortClause(sort string) string {
	switch sort {
	case "price-asc":
		return "price ASC, id DESC"
	case "price-desc":
		return "price DESC, id DESC"
	case "popular":
		return "views DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

// filterProducts applies the storefront filters to an active-products query.
func filterProducts(db *gorm.DB, q ProductQuery) *gorm.DB {
	query := db.Model(&models.Product{}).Where("is_active = ?", true)

	if q.Category != "" {
		ids := db.Model(&models.Category{}).Select("id").
			Where("slug = ? OR parent_id IN (?)", q.Category,
				db.Model(&models.Category{}).Select("id").Where("slug = ?", q.Category))
		query = query.Where("category_id IN (?)", ids)
	}
	if q.Brand != "" {
		query = query.Where("brand_id IN (?)", db.Model(&models.Brand{}).Select("id").Where("slug = ?", q.Brand))
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?", like, like, like)
	}
	if q.MinPrice != nil {
		query = query.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		query = query.Where("price <= ?", *q.MaxPrice)
	}
	if q.Condition != "" {
		query = query.Where("condition = ?", q.Condition)
	}
	return query
}

// GetProducts is the public catalog: filtered, sorted and paginated.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q ProductQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
			return
		}
		q.normalize()
		if q.Condition != "" && !models.Condition(q.Condition).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid condition"})
			return
		}

		query := filterProducts(db, q).Session(&gorm.Session{})

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}

		var products []models.Product
		if err := query.
			Preload("Category").
			Preload("Brand").
			Order(sortClause(q.Sort)).
			Offset((q.Page - 1) * q.Limit).
			Limit(q.Limit).
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products": models.NewProductViews(products),
			"pagination": gin.H{
				"page":       q.Page,
				"limit":      q.Limit,
				"total":      total,
				"totalPages": int(math.Ceil(float64(total) / float64(q.Limit))),
			},
		})
	}
}

// GetAdminProducts lists every product, active or not, newest first.
func GetAdminProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.
			Preload("Category").
			Preload("Brand").
			Order("created_at DESC, id DESC").
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, models.NewProductViews(products))
	}
}
