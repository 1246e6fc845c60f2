package model

import (
	"time"

	"gorm.io/gorm"
)

// Exam is the top of the curated taxonomy (e.g. "CBSE Class 12").
// The pipeline only reads this hierarchy, it never writes it.
type Exam struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`

	Subjects []Subject `gorm:"foreignKey:ExamID" json:"subjects,omitempty"`
}

// Subject belongs to an exam (e.g. "Mathematics").
type Subject struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ExamID    uint           `gorm:"index;not null" json:"exam_id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`

	Exam   Exam    `gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE" json:"exam,omitempty"`
	Topics []Topic `gorm:"foreignKey:SubjectID" json:"topics,omitempty"`
}

// Topic belongs to a subject (e.g. "Algebra"). Topic names are the vocabulary
// the question miner matches against.
type Topic struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	SubjectID uint           `gorm:"index;not null" json:"subject_id"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name"`

	Subject Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"subject,omitempty"`
}
