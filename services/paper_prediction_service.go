package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
	"github.com/sahilchouksey/exam-predict-api/prompts"
	"github.com/sahilchouksey/exam-predict-api/services/llm"
	"github.com/sahilchouksey/exam-predict-api/services/storage"
)

// maxPromptContextChars bounds the prompt context. Truncation is silent and by
// character count, not by semantic boundary.
const maxPromptContextChars = 12000

// PaperPredictionService drives the LLM to synthesize a new exam paper from
// aggregated historical text, then renders and stores it
type PaperPredictionService struct {
	db        *gorm.DB
	completer llm.Completer
	store     storage.ObjectStore
	renderer  Renderer
	predictor *TopicPredictorService
}

// NewPaperPredictionService creates a new paper prediction service
func NewPaperPredictionService(db *gorm.DB, completer llm.Completer, store storage.ObjectStore, renderer Renderer, predictor *TopicPredictorService) *PaperPredictionService {
	return &PaperPredictionService{
		db:        db,
		completer: completer,
		store:     store,
		renderer:  renderer,
		predictor: predictor,
	}
}

// PredictAndStore generates a predicted paper for the upload's aggregated
// cleaned text and persists it. The text row is committed before rendering so
// a render or storage failure cannot lose the generated paper; in that case
// the paper is kept without a PDF key and the pipeline continues.
func (s *PaperPredictionService) PredictAndStore(ctx context.Context, upload *model.Upload, contextText string) (*model.PredictedPaper, error) {
	log.Printf("Prediction: starting for upload %d", upload.ID)

	if NormalizeText(contextText) == "" {
		return nil, ErrEmptyContext
	}

	truncated := contextText
	if len(truncated) > maxPromptContextChars {
		truncated = truncated[:maxPromptContextChars]
	}

	log.Printf("Prediction: sending prompt to LLM (%d context chars)", len(truncated))
	predictedText, err := s.completer.Complete(ctx, prompts.QuestionPaper(truncated))
	if err != nil {
		return nil, fmt.Errorf("paper prediction for upload %d: %w", upload.ID, err)
	}

	paper := &model.PredictedPaper{
		UploadID:      upload.ID,
		ExamID:        upload.ExamID,
		PredictedText: predictedText,
		TopicSnapshot: s.topicSnapshot(upload),
	}

	if err := s.db.Create(paper).Error; err != nil {
		return nil, fmt.Errorf("failed to store predicted paper for upload %d: %w", upload.ID, err)
	}

	s.renderAndAttach(ctx, paper)

	return paper, nil
}

// renderAndAttach renders the paper to PDF and uploads it. Failure here is
// logged and leaves the paper without a document key, a valid terminal state.
func (s *PaperPredictionService) renderAndAttach(ctx context.Context, paper *model.PredictedPaper) {
	log.Printf("Prediction: rendering PDF for paper %d", paper.ID)

	pdfBytes, err := s.renderer.Render(paper.PredictedText)
	if err != nil {
		log.Printf("Prediction: render failed for paper %d, keeping text without PDF: %v", paper.ID, err)
		return
	}

	key := storage.PredictedPaperKey(paper.UploadID)
	log.Printf("Prediction: uploading PDF to storage key %s", key)

	if _, err := s.store.Upload(ctx, key, pdfBytes, "application/pdf"); err != nil {
		log.Printf("Prediction: PDF upload failed for paper %d, keeping text without PDF: %v", paper.ID, err)
		return
	}

	if err := s.db.Model(paper).Update("pdf_key", key).Error; err != nil {
		log.Printf("Prediction: failed to attach PDF key to paper %d: %v", paper.ID, err)
		return
	}
	paper.PDFKey = &key

	log.Printf("Prediction: paper %d stored with PDF key %s", paper.ID, key)
}

// topicSnapshot captures the exam's current topic frequency ranking so the
// paper records what informed it. Best effort; never blocks prediction.
func (s *PaperPredictionService) topicSnapshot(upload *model.Upload) datatypes.JSON {
	if s.predictor == nil {
		return nil
	}

	predictions, err := s.predictor.PredictTopicsForExam(upload.ExamID, upload.Year, DefaultTopK)
	if err != nil {
		log.Printf("Prediction: topic snapshot failed for upload %d: %v", upload.ID, err)
		return nil
	}
	if len(predictions) == 0 {
		return nil
	}

	data, err := json.Marshal(predictions)
	if err != nil {
		log.Printf("Prediction: topic snapshot marshal failed for upload %d: %v", upload.ID, err)
		return nil
	}
	return datatypes.JSON(data)
}
