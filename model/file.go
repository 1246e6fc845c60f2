package model

import (
	"time"

	"gorm.io/gorm"
)

// FileType identifies the kind of uploaded document
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
)

// File is one uploaded document inside an upload batch. The pipeline never
// deletes files; it only fills in PageCount and the raw ExtractedText cache
// after OCR.
type File struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	UploadID         uint           `gorm:"index;not null" json:"upload_id"`
	FileType         FileType       `gorm:"type:varchar(10);not null" json:"file_type"`
	StorageKey       string         `gorm:"type:varchar(512);not null" json:"storage_key"`
	OriginalFilename string         `gorm:"type:varchar(255);not null" json:"original_filename"`
	PageCount        *int           `json:"page_count,omitempty"`
	ExtractedText    *string        `gorm:"type:text" json:"-"`

	Upload        Upload         `gorm:"foreignKey:UploadID;constraint:OnDelete:CASCADE" json:"-"`
	ProcessedText *ProcessedText `gorm:"foreignKey:FileID" json:"processed_text,omitempty"`
}
