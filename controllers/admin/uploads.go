package adminController

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/EltunLTN/autoparts-api/models"
	"github.com/EltunLTN/autoparts-api/uploads"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// requestBaseURL is used when no public URL is configured.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

// UploadImage stores a multipart "image" under uploadDir and records its public URL.
func UploadImage(db *gorm.DB, uploadDir, publicURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
			return
		}

		name, err := uploads.FileName(fileHeader.Filename, time.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload folder"})
			return
		}
		if err := c.SaveUploadedFile(fileHeader, filepath.Join(uploadDir, name)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}

		base := publicURL
		if base == "" {
			base = requestBaseURL(c)
		}
		upload, err := models.SaveUpload(db, name, uploads.PublicURL(base, name))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DB save failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Image uploaded", "url": upload.FileURL, "data": upload})
	}
}

func GetUploads(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		files, err := models.ListUploads(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get uploads"})
			return
		}
		c.JSON(http.StatusOK, files)
	}
}

// DeleteUpload removes both the record and the file on disk.
func DeleteUpload(db *gorm.DB, uploadDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var upload models.Upload
		if err := db.First(&upload, "id = ?", c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Upload not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		path := filepath.Join(uploadDir, filepath.Base(upload.FileName))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file from disk"})
			return
		}
		if err := db.Delete(&upload).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete upload record"})
			return
		}

		log.Printf("🗑️ Upload deleted: %s", upload.FileName)
		c.JSON(http.StatusOK, gin.H{"message": "Upload deleted"})
	}
}
