package model

import (
	"time"

	"gorm.io/gorm"
)

// UploadStatus represents the processing state of an upload batch
type UploadStatus string

const (
	UploadPending    UploadStatus = "pending"
	UploadProcessing UploadStatus = "processing"
	UploadCompleted  UploadStatus = "completed"
	UploadFailed     UploadStatus = "failed"
)

// Upload is one user-submitted batch of exam paper files for a given exam and
// year. Status is mutated only by the processing pipeline and is terminal once
// completed or failed; a failed upload requires a fresh submission.
type Upload struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	ExamID    uint           `gorm:"index;not null" json:"exam_id"`
	Year      int            `gorm:"not null" json:"year"`
	Status    UploadStatus   `gorm:"type:varchar(20);default:'pending'" json:"status"`
	// Last pipeline error, kept for operator visibility
	ProcessingError string `gorm:"type:text" json:"processing_error,omitempty"`

	User  User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Exam  Exam   `gorm:"foreignKey:ExamID" json:"exam,omitempty"`
	Files []File `gorm:"foreignKey:UploadID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
}

// UploadResponse is used for API responses
type UploadResponse struct {
	ID        uint         `json:"id"`
	ExamID    uint         `json:"exam_id"`
	Year      int          `json:"year"`
	Status    UploadStatus `json:"status"`
	FileCount int          `json:"file_count"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ToResponse converts Upload to UploadResponse
func (u *Upload) ToResponse() *UploadResponse {
	return &UploadResponse{
		ID:        u.ID,
		ExamID:    u.ExamID,
		Year:      u.Year,
		Status:    u.Status,
		FileCount: len(u.Files),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
