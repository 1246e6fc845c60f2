package model

import (
	"time"

	"gorm.io/gorm"
)

// FlashcardDifficulty is the difficulty rating of a flashcard
type FlashcardDifficulty string

const (
	FlashcardEasy   FlashcardDifficulty = "easy"
	FlashcardMedium FlashcardDifficulty = "medium"
	FlashcardHard   FlashcardDifficulty = "hard"
)

// ParseDifficulty maps a raw difficulty string to a known value, defaulting to
// medium for anything unrecognized.
func ParseDifficulty(s string) FlashcardDifficulty {
	switch FlashcardDifficulty(s) {
	case FlashcardEasy, FlashcardMedium, FlashcardHard:
		return FlashcardDifficulty(s)
	default:
		return FlashcardMedium
	}
}

// Flashcard is one Q/A study item generated from a predicted paper. The review
// counters exist for spaced repetition scheduling done elsewhere.
type Flashcard struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	DeletedAt        gorm.DeletedAt      `gorm:"index" json:"-"`
	UserID           uint                `gorm:"index;not null" json:"user_id"`
	PredictedPaperID uint                `gorm:"index;not null" json:"predicted_paper_id"`
	Question         string              `gorm:"type:text;not null" json:"question"`
	Answer           string              `gorm:"type:text;not null" json:"answer"`
	Difficulty       FlashcardDifficulty `gorm:"type:varchar(10);default:'medium'" json:"difficulty"`
	ReviewCount      int                 `gorm:"default:0" json:"review_count"`
	NextReviewAt     *time.Time          `json:"next_review_at,omitempty"`

	User           User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PredictedPaper PredictedPaper `gorm:"foreignKey:PredictedPaperID;constraint:OnDelete:CASCADE" json:"-"`
}
