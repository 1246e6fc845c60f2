package services

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
)

var doubledNewlines = regexp.MustCompile(`\n{2,}`)

// NormalizeText turns raw OCR output into its canonical cleaned form: runs of
// newlines collapse to a single newline and surrounding whitespace is trimmed.
// Deterministic and idempotent.
func NormalizeText(raw string) string {
	return strings.TrimSpace(doubledNewlines.ReplaceAllString(raw, "\n"))
}

// ConfidenceEstimator scores how trustworthy a cleaned text is, in [0,1].
type ConfidenceEstimator interface {
	Estimate(raw, cleaned string) float64
}

// StaticConfidence always reports the same confidence. The OCR engine's own
// signal is not plumbed through yet, so 0.9 stands in for a real estimate.
type StaticConfidence struct {
	Value float64
}

// DefaultConfidence is the placeholder confidence for normalized text
const DefaultConfidence = 0.9

// Estimate returns the fixed value
func (s StaticConfidence) Estimate(raw, cleaned string) float64 {
	return s.Value
}

// TextService normalizes raw OCR text and persists the result
type TextService struct {
	db        *gorm.DB
	estimator ConfidenceEstimator
}

// NewTextService creates a new text normalization service
func NewTextService(db *gorm.DB, estimator ConfidenceEstimator) *TextService {
	if estimator == nil {
		estimator = StaticConfidence{Value: DefaultConfidence}
	}
	return &TextService{
		db:        db,
		estimator: estimator,
	}
}

// CleanAndStore normalizes raw text and creates the file's ProcessedText row.
// One row per file; it is never updated afterwards.
func (s *TextService) CleanAndStore(file *model.File, raw string) (*model.ProcessedText, error) {
	cleaned := NormalizeText(raw)

	processed := &model.ProcessedText{
		FileID:      file.ID,
		CleanedText: cleaned,
		Confidence:  s.estimator.Estimate(raw, cleaned),
	}

	if err := s.db.Create(processed).Error; err != nil {
		return nil, fmt.Errorf("failed to store processed text for file %d: %w", file.ID, err)
	}

	return processed, nil
}
