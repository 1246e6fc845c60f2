package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
	"github.com/sahilchouksey/exam-predict-api/prompts"
	"github.com/sahilchouksey/exam-predict-api/services/llm"
	"github.com/sahilchouksey/exam-predict-api/utils"
	"github.com/sahilchouksey/exam-predict-api/utils/validation"
)

const (
	// DefaultMaxCards is the default cap on flashcards generated per paper
	DefaultMaxCards = 20

	// maxFlashcardContextChars bounds the prompt context for flashcard generation
	maxFlashcardContextChars = 15000
)

// flashcardItem is one parsed flashcard from the LLM response
type flashcardItem struct {
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Difficulty string `json:"difficulty"`
}

// FlashcardService generates study flashcards from predicted paper text.
// LLM output is not guaranteed well-formed, so parsing is tolerant by design.
type FlashcardService struct {
	db        *gorm.DB
	completer llm.Completer
	validator *validation.Validator
}

// NewFlashcardService creates a new flashcard service
func NewFlashcardService(db *gorm.DB, completer llm.Completer) *FlashcardService {
	return &FlashcardService{
		db:        db,
		completer: completer,
		validator: validation.NewValidator(),
	}
}

// Generate produces up to maxCards flashcards from the paper text and persists
// them as one batch. Empty input or empty/unparseable LLM output yields an
// empty result without error; only the LLM call itself can fail.
func (s *FlashcardService) Generate(ctx context.Context, userID, paperID uint, text string, maxCards int) ([]model.Flashcard, error) {
	if strings.TrimSpace(text) == "" {
		log.Printf("Flashcards: no text provided for paper %d", paperID)
		return nil, nil
	}
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}

	truncated := text
	if len(truncated) > maxFlashcardContextChars {
		truncated = truncated[:maxFlashcardContextChars]
	}

	log.Printf("Flashcards: requesting up to %d cards for paper %d", maxCards, paperID)
	resp, err := s.completer.Complete(ctx, prompts.Flashcards(maxCards, truncated))
	if err != nil {
		return nil, fmt.Errorf("flashcard generation for paper %d: %w", paperID, err)
	}

	items := s.parseResponse(resp, maxCards)
	if len(items) == 0 {
		log.Printf("Flashcards: no usable cards parsed from LLM response for paper %d", paperID)
		return nil, nil
	}

	cards := make([]model.Flashcard, 0, len(items))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			card := model.Flashcard{
				UserID:           userID,
				PredictedPaperID: paperID,
				Question:         strings.TrimSpace(item.Question),
				Answer:           strings.TrimSpace(item.Answer),
				Difficulty:       model.ParseDifficulty(item.Difficulty),
			}
			if err := tx.Create(&card).Error; err != nil {
				return err
			}
			cards = append(cards, card)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store flashcards for paper %d: %w", paperID, err)
	}

	log.Printf("Flashcards: created %d cards for paper %d", len(cards), paperID)
	return cards, nil
}

// parseResponse extracts flashcard items from the raw LLM response:
//  1. direct JSON parse
//  2. JSON substring extraction (code fences, balanced bracket span)
//  3. line-oriented Q:/A: pair fallback
//
// Items missing a question or answer are dropped.
func (s *FlashcardService) parseResponse(resp string, maxCards int) []flashcardItem {
	if strings.TrimSpace(resp) == "" {
		return nil
	}

	var items []flashcardItem
	if err := json.Unmarshal([]byte(resp), &items); err != nil {
		items = nil
		if jsonStr, extractErr := utils.ExtractJSON(resp); extractErr == nil {
			if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
				items = nil
			}
		}
	}

	if items == nil {
		log.Printf("Flashcards: no JSON list parsed, falling back to line parsing")
		items = parseQALines(resp)
	}

	valid := make([]flashcardItem, 0, len(items))
	for _, item := range items {
		if len(valid) == maxCards {
			break
		}
		if err := s.validator.ValidateStruct(item); err != nil {
			continue
		}
		if strings.TrimSpace(item.Question) == "" || strings.TrimSpace(item.Answer) == "" {
			continue
		}
		valid = append(valid, item)
	}
	return valid
}

// parseQALines scans consecutive lines for "Q: ..." / "A: ..." pairs
func parseQALines(resp string) []flashcardItem {
	var lines []string
	for _, line := range strings.Split(resp, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var items []flashcardItem
	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(strings.ToLower(lines[i]), "q:") {
			continue
		}
		question := strings.TrimSpace(lines[i][2:])

		if i+1 < len(lines) && strings.HasPrefix(strings.ToLower(lines[i+1]), "a:") {
			answer := strings.TrimSpace(lines[i+1][2:])
			if question != "" && answer != "" {
				items = append(items, flashcardItem{
					Question:   question,
					Answer:     answer,
					Difficulty: string(model.FlashcardMedium),
				})
			}
			i++
		}
	}
	return items
}
