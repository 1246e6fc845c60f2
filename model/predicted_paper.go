package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PredictedPaper is the LLM-generated exam paper for one upload. The predicted
// text is persisted before the PDF is rendered, so a render failure leaves the
// row without a PDFKey but never loses the text.
type PredictedPaper struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	UploadID      uint           `gorm:"index;not null" json:"upload_id"`
	ExamID        uint           `gorm:"index;not null" json:"exam_id"`
	PredictedText string         `gorm:"type:text;not null" json:"predicted_text"`
	PDFKey        *string        `gorm:"type:varchar(512)" json:"pdf_key,omitempty"`
	// Topic frequency ranking captured at generation time, for later review
	TopicSnapshot datatypes.JSON `json:"topic_snapshot,omitempty"`

	Upload     Upload      `gorm:"foreignKey:UploadID;constraint:OnDelete:CASCADE" json:"-"`
	Flashcards []Flashcard `gorm:"foreignKey:PredictedPaperID" json:"flashcards,omitempty"`
}

// PredictedPaperSummary is a lightweight version for listing
type PredictedPaperSummary struct {
	ID        uint      `json:"id"`
	UploadID  uint      `json:"upload_id"`
	ExamID    uint      `json:"exam_id"`
	Year      int       `json:"year"`
	HasPDF    bool      `json:"has_pdf"`
	CreatedAt time.Time `json:"created_at"`
}

// ToSummary converts PredictedPaper to PredictedPaperSummary
func (p *PredictedPaper) ToSummary(year int) PredictedPaperSummary {
	return PredictedPaperSummary{
		ID:        p.ID,
		UploadID:  p.UploadID,
		ExamID:    p.ExamID,
		Year:      year,
		HasPDF:    p.PDFKey != nil,
		CreatedAt: p.CreatedAt,
	}
}
