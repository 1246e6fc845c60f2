package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
)

// UploadPipeline sequences the processing stages for one upload:
// per file OCR → normalize → mine, then aggregate → predict paper →
// generate flashcards, tracking upload status throughout.
//
// Stage failures before the flashcard stage mark the upload failed and
// propagate, so the dispatch layer observes them too. Flashcard failures are
// isolated: they are logged and never affect the upload's terminal status.
type UploadPipeline struct {
	db         *gorm.DB
	ocr        *OCRService
	text       *TextService
	miner      *QuestionMiner
	papers     *PaperPredictionService
	flashcards *FlashcardService
}

// NewUploadPipeline creates a new upload pipeline
func NewUploadPipeline(db *gorm.DB, ocr *OCRService, text *TextService, miner *QuestionMiner, papers *PaperPredictionService, flashcards *FlashcardService) *UploadPipeline {
	return &UploadPipeline{
		db:         db,
		ocr:        ocr,
		text:       text,
		miner:      miner,
		papers:     papers,
		flashcards: flashcards,
	}
}

// ProcessUpload runs the full pipeline for one upload id. Files are processed
// strictly in storage order; each stage commits its state before the next
// starts, so a crash leaves the last committed state visible.
func (p *UploadPipeline) ProcessUpload(ctx context.Context, uploadID uint) error {
	log.Printf("Pipeline: started for upload %d", uploadID)

	var upload model.Upload
	if err := p.db.First(&upload, uploadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("Pipeline: upload %d not found", uploadID)
			return nil
		}
		return fmt.Errorf("failed to load upload %d: %w", uploadID, err)
	}

	// committed immediately so concurrent readers see the transition
	if err := p.setStatus(&upload, model.UploadProcessing, ""); err != nil {
		return err
	}
	log.Printf("Pipeline: upload %d marked as processing", uploadID)

	var files []model.File
	if err := p.db.Where("upload_id = ?", uploadID).Order("id").Find(&files).Error; err != nil {
		return p.fail(&upload, fmt.Errorf("failed to load files for upload %d: %w", uploadID, err))
	}
	if len(files) == 0 {
		log.Printf("Pipeline: no files found for upload %d", uploadID)
		if err := p.setStatus(&upload, model.UploadFailed, "no files in upload"); err != nil {
			return err
		}
		return nil
	}
	log.Printf("Pipeline: found %d file(s) for upload %d", len(files), uploadID)

	for idx := range files {
		file := &files[idx]
		log.Printf("Pipeline: processing file %d/%d: %s", idx+1, len(files), file.OriginalFilename)

		if err := p.processFile(ctx, &upload, file); err != nil {
			return p.fail(&upload, err)
		}
	}

	combined, err := p.aggregateCleanedText(uploadID)
	if err != nil {
		return p.fail(&upload, err)
	}

	log.Printf("Pipeline: running paper prediction for upload %d (%d chars)", uploadID, len(combined))
	paper, err := p.papers.PredictAndStore(ctx, &upload, combined)
	if err != nil {
		return p.fail(&upload, err)
	}

	// flashcard generation must never fail the upload
	if _, err := p.flashcards.Generate(ctx, upload.UserID, paper.ID, paper.PredictedText, DefaultMaxCards); err != nil {
		log.Printf("Pipeline: flashcard generation failed for upload %d (ignored): %v", uploadID, err)
	}

	if err := p.setStatus(&upload, model.UploadCompleted, ""); err != nil {
		return err
	}

	log.Printf("Pipeline: upload %d processing completed", uploadID)
	return nil
}

// processFile runs OCR → normalize → mine for one file
func (p *UploadPipeline) processFile(ctx context.Context, upload *model.Upload, file *model.File) error {
	log.Printf("Pipeline: running OCR on %s", file.OriginalFilename)
	raw, pageCount, err := p.ocr.ExtractText(ctx, file)
	if err != nil {
		return err
	}

	// cache the raw extraction on the file row
	file.ExtractedText = &raw
	file.PageCount = &pageCount
	if err := p.db.Model(file).Updates(map[string]interface{}{
		"extracted_text": raw,
		"page_count":     pageCount,
	}).Error; err != nil {
		return fmt.Errorf("failed to cache extracted text for file %d: %w", file.ID, err)
	}

	log.Printf("Pipeline: cleaning text for %s", file.OriginalFilename)
	processed, err := p.text.CleanAndStore(file, raw)
	if err != nil {
		return err
	}

	log.Printf("Pipeline: mining questions from %s", file.OriginalFilename)
	if _, err := p.miner.Mine(upload, processed); err != nil {
		return err
	}

	return nil
}

// aggregateCleanedText joins the non-empty cleaned texts of the upload's files
// in file order. An upload with no usable text at all cannot proceed.
func (p *UploadPipeline) aggregateCleanedText(uploadID uint) (string, error) {
	var texts []model.ProcessedText
	err := p.db.
		Joins("JOIN files ON files.id = processed_texts.file_id").
		Where("files.upload_id = ?", uploadID).
		Order("files.id").
		Find(&texts).Error
	if err != nil {
		return "", fmt.Errorf("failed to load processed texts for upload %d: %w", uploadID, err)
	}

	var parts []string
	for _, t := range texts {
		if strings.TrimSpace(t.CleanedText) != "" {
			parts = append(parts, t.CleanedText)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoProcessableContent
	}

	return strings.Join(parts, "\n\n"), nil
}

// fail marks the upload failed and returns the original error so the caller
// (e.g. the task worker) observes it too
func (p *UploadPipeline) fail(upload *model.Upload, cause error) error {
	log.Printf("Pipeline: upload %d failed: %v", upload.ID, cause)

	if err := p.setStatus(upload, model.UploadFailed, cause.Error()); err != nil {
		log.Printf("Pipeline: could not mark upload %d as failed: %v", upload.ID, err)
	}
	return cause
}

// setStatus commits a status transition
func (p *UploadPipeline) setStatus(upload *model.Upload, status model.UploadStatus, processingError string) error {
	upload.Status = status
	upload.ProcessingError = processingError

	err := p.db.Model(upload).Updates(map[string]interface{}{
		"status":           status,
		"processing_error": processingError,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to set upload %d status to %s: %w", upload.ID, status, err)
	}
	return nil
}
