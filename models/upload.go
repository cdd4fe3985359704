package models

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// Upload records an image stored under the uploads directory.
type Upload struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	FileName  string         `json:"fileName" gorm:"not null"`
	FileURL   string         `json:"fileUrl" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func SaveUpload(db *gorm.DB, fileName, fileURL string) (*Upload, error) {
	upload := &Upload{
		FileName: fileName,
		FileURL:  fileURL,
	}
	if err := db.Create(upload).Error; err != nil {
		return nil, err
	}

	log.Printf("📁 Saved upload in DB: %s -> %s", fileName, fileURL)
	return upload, nil
}

func ListUploads(db *gorm.DB) ([]Upload, error) {
	var files []Upload
	if err := db.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
