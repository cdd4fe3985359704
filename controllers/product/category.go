package productcontroller

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TaxonomyInput is the body for creating or renaming a category or brand.
type TaxonomyInput struct {
	Name        string `json:"name" binding:"required,min=2"`
	Description string `json:"description"`
	Image       string `json:"image" binding:"omitempty,url"`
	ParentID    *uint  `json:"parentId"`
}

type CategoryNode struct {
	ID           uint           `json:"id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	Image        string         `json:"image"`
	ProductCount int64          `json:"productCount"`
	Children     []CategoryNode `json:"children"`
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// productCounts returns how many products reference each id in column.
func productCounts(db *gorm.DB, column string) (map[uint]int64, error) {
	var rows []struct {
		ID    uint
		Total int64
	}
	if err := db.Model(&models.Product{}).
		Select(column + " AS id, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ID] = r.Total
	}
	return counts, nil
}

// GetCategories returns id and name of every category, by name.
func GetCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		}
		if err := db.Model(&models.Category{}).Select("id, name").Order("name ASC").Scan(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GetCategoryTree returns top-level categories with nested children.
// A node's product count includes every descendant.
func GetCategoryTree(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Order("name ASC").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		counts, err := productCounts(db, "category_id")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}

		byParent := make(map[uint][]models.Category)
		var roots []models.Category
		for _, cat := range categories {
			if cat.ParentID == nil {
				roots = append(roots, cat)
				continue
			}
			byParent[*cat.ParentID] = append(byParent[*cat.ParentID], cat)
		}

		seen := make(map[uint]bool, len(categories))
		var build func(cat models.Category) CategoryNode
		build = func(cat models.Category) CategoryNode {
			seen[cat.ID] = true
			node := CategoryNode{
				ID: cat.ID, Name: cat.Name, Slug: cat.Slug, Image: cat.Image,
				ProductCount: counts[cat.ID], Children: []CategoryNode{},
			}
			for _, child := range byParent[cat.ID] {
				if seen[child.ID] {
					continue
				}
				sub := build(child)
				node.ProductCount += sub.ProductCount
				node.Children = append(node.Children, sub)
			}
			return node
		}

		tree := make([]CategoryNode, 0, len(roots))
		for _, cat := range roots {
			tree = append(tree, build(cat))
		}
		c.JSON(http.StatusOK, tree)
	}
}

// GetAdminCategories lists categories with their product counts.
func GetAdminCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Order("name ASC").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		counts, err := productCounts(db, "category_id")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}
		out := make([]gin.H, 0, len(categories))
		for _, cat := range categories {
			out = append(out, gin.H{
				"id": cat.ID, "name": cat.Name, "slug": cat.Slug, "description": cat.Description,
				"image": cat.Image, "parentId": cat.ParentID, "productCount": counts[cat.ID],
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input TaxonomyInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.ParentID != nil {
			if err := db.First(&models.Category{}, *input.ParentID).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Parent category not found"})
				return
			}
		}

		category := models.Category{
			Name:        input.Name,
			Slug:        utils.Slugify(input.Name),
			Description: input.Description,
			Image:       input.Image,
			ParentID:    input.ParentID,
		}
		if !nameAvailable(c, db, &models.Category{}, "Category", category.Name, category.Slug, 0) {
			return
		}
		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func UpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var category models.Category
		if err := db.First(&category, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		var input TaxonomyInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.ParentID != nil {
			err := checkParent(db, category.ID, *input.ParentID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Parent category not found"})
				return
			case errors.Is(err, errCategoryCycle):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			case err != nil:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
				return
			}
		}

		slug := utils.Slugify(input.Name)
		if !nameAvailable(c, db, &models.Category{}, "Category", input.Name, slug, category.ID) {
			return
		}
		category.Name = input.Name
		category.Slug = slug
		category.Description = input.Description
		category.Image = input.Image
		category.ParentID = input.ParentID

		if err := db.Save(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			var cat models.Category
			if err := tx.First(&cat, id).Error; err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return inUseError{what: "category", count: count}
			}
			if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&cat).Error
		})
		respondDelete(c, err, "Category")
	}
}

// inUseError blocks deleting a category or brand that still has products.
type inUseError struct {
	what  string
	count int64
}

func (e inUseError) Error() string {
	return fmt.Sprintf("Cannot delete %s with %d products", e.what, e.count)
}

func respondDelete(c *gin.Context, err error, what string) {
	var inUse inUseError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.As(err, &inUse):
		c.JSON(http.StatusBadRequest, gin.H{"error": inUse.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete " + what})
	}
}

var errCategoryCycle = errors.New("A category cannot be placed under itself or its descendants")

// checkParent walks up from parentID and fails if it reaches id or a missing row.
func checkParent(db *gorm.DB, id, parentID uint) error {
	next := &parentID
	for hops := 0; next != nil; hops++ {
		if *next == id || hops > 64 {
			return errCategoryCycle
		}
		var parent models.Category
		if err := db.Select("id", "parent_id").First(&parent, *next).Error; err != nil {
			return err
		}
		next = parent.ParentID
	}
	return nil
}

// nameAvailable writes a 400 or 500 and returns false when name cannot be used for a new or renamed row.
func nameAvailable(c *gin.Context, db *gorm.DB, model interface{}, what, name, slug string, exceptID uint) bool {
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": what + " name must contain letters or digits"})
		return false
	}
	var count int64
	if err := db.Model(model).Where("(name = ? OR slug = ?) AND id <> ?", name, slug, exceptID).Count(&count).Error; err != nil {
		log.Printf("❌ Failed to check %s name: %v", what, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save " + what})
		return false
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": what + " with this name already exists"})
		return false
	}
	return true
}
