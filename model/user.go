package model

import (
	"time"

	"gorm.io/gorm"
)

// User owns uploads and flashcards. Authentication lives outside this service;
// only the ownership reference is needed here.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name      string         `gorm:"type:varchar(100)" json:"name,omitempty"`

	Uploads    []Upload    `gorm:"foreignKey:UserID" json:"uploads,omitempty"`
	Flashcards []Flashcard `gorm:"foreignKey:UserID" json:"flashcards,omitempty"`
}
