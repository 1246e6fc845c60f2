package model

import (
	"time"

	"gorm.io/gorm"
)

// Question is one mined question unit from a processed text.
type Question struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	ProcessedTextID uint           `gorm:"index;not null" json:"processed_text_id"`
	ExamID          uint           `gorm:"index;not null" json:"exam_id"`
	SubjectID       uint           `gorm:"index;not null" json:"subject_id"`
	Year            int            `gorm:"not null" json:"year"`
	QuestionNumber  *int           `json:"question_number,omitempty"`
	QuestionText    string         `gorm:"type:text;not null" json:"question_text"`
	Marks           *int           `json:"marks,omitempty"`

	ProcessedText ProcessedText   `gorm:"foreignKey:ProcessedTextID;constraint:OnDelete:CASCADE" json:"-"`
	Topics        []QuestionTopic `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"topics,omitempty"`
}

// QuestionTopic links a mined question to a taxonomy topic with a confidence
// score. The (question, topic) pair is unique: at most one link per pair.
type QuestionTopic struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	QuestionID uint           `gorm:"not null;uniqueIndex:uq_question_topic" json:"question_id"`
	TopicID    uint           `gorm:"not null;uniqueIndex:uq_question_topic" json:"topic_id"`
	Confidence float64        `json:"confidence"`

	Question Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	Topic    Topic    `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"topic,omitempty"`
}
