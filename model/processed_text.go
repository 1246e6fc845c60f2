package model

import (
	"time"

	"gorm.io/gorm"
)

// ProcessedText is the normalized OCR output for exactly one file (1:1).
// Created once by the text normalizer and never updated afterwards.
type ProcessedText struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	FileID      uint           `gorm:"uniqueIndex;not null" json:"file_id"`
	CleanedText string         `gorm:"type:text" json:"cleaned_text"`
	// Confidence in [0,1]; currently supplied by a pluggable estimator
	Confidence float64 `json:"confidence"`

	File      File       `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE" json:"-"`
	Questions []Question `gorm:"foreignKey:ProcessedTextID" json:"questions,omitempty"`
}
