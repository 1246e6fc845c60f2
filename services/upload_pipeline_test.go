package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
)

// pngBytes encodes a tiny image so the OCR path has something to decode
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Gray{Y: 200})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// newTestPipeline wires a pipeline over fakes for everything external
func newTestPipeline(db *gorm.DB, store *fakeObjectStore, engine *fakeEngine, completer *fakeCompleter) *UploadPipeline {
	ocr := NewOCRService(store, engine)
	text := NewTextService(db, nil)
	miner := NewQuestionMiner(db, 1)
	papers := NewPaperPredictionService(db, completer, store, &fakeRenderer{}, NewTopicPredictorService(db))
	flashcards := NewFlashcardService(db, completer)
	return NewUploadPipeline(db, ocr, text, miner, papers, flashcards)
}

func TestProcessUploadEndToEnd(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db, "Algebra")
	upload, file := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	store := newFakeObjectStore()
	store.objects[file.StorageKey] = pngBytes(t)

	engine := &fakeEngine{text: "1. Solve the algebra problem.\n\n2. Explain the theorem."}
	completer := &fakeCompleter{responses: []string{
		"PREDICTED PAPER\n1. Future question.",
		`[{"question": "Q1", "answer": "A1", "difficulty": "easy"}]`,
	}}

	pipeline := newTestPipeline(db, store, engine, completer)
	if err := pipeline.ProcessUpload(context.Background(), upload.ID); err != nil {
		t.Fatalf("ProcessUpload failed: %v", err)
	}

	var refreshed model.Upload
	if err := db.First(&refreshed, upload.ID).Error; err != nil {
		t.Fatalf("failed to reload upload: %v", err)
	}
	if refreshed.Status != model.UploadCompleted {
		t.Fatalf("upload status = %s, want completed (error: %q)", refreshed.Status, refreshed.ProcessingError)
	}

	// OCR output cached on the file row
	var refreshedFile model.File
	if err := db.First(&refreshedFile, file.ID).Error; err != nil {
		t.Fatalf("failed to reload file: %v", err)
	}
	if refreshedFile.ExtractedText == nil || *refreshedFile.ExtractedText == "" {
		t.Error("extracted text was not cached on the file")
	}
	if refreshedFile.PageCount == nil || *refreshedFile.PageCount != 1 {
		t.Errorf("page count = %v, want 1", refreshedFile.PageCount)
	}

	// both questions mined
	var questionCount int64
	db.Model(&model.Question{}).Count(&questionCount)
	if questionCount != 2 {
		t.Errorf("mined %d questions, want 2", questionCount)
	}

	// paper stored with rendered PDF
	var paper model.PredictedPaper
	if err := db.Where("upload_id = ?", upload.ID).First(&paper).Error; err != nil {
		t.Fatalf("no predicted paper stored: %v", err)
	}
	if paper.PDFKey == nil {
		t.Error("paper has no PDF key")
	}

	// flashcards generated from the paper
	var cardCount int64
	db.Model(&model.Flashcard{}).Where("predicted_paper_id = ?", paper.ID).Count(&cardCount)
	if cardCount != 1 {
		t.Errorf("stored %d flashcards, want 1", cardCount)
	}
}

func TestProcessUploadNoFiles(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db)

	upload := model.Upload{UserID: user.ID, ExamID: exam.ID, Year: 2023, Status: model.UploadPending}
	if err := db.Create(&upload).Error; err != nil {
		t.Fatalf("failed to create upload: %v", err)
	}

	completer := &fakeCompleter{}
	pipeline := newTestPipeline(db, newFakeObjectStore(), &fakeEngine{}, completer)

	if err := pipeline.ProcessUpload(context.Background(), upload.ID); err != nil {
		t.Fatalf("empty upload should not return an error: %v", err)
	}

	var refreshed model.Upload
	if err := db.First(&refreshed, upload.ID).Error; err != nil {
		t.Fatalf("failed to reload upload: %v", err)
	}
	if refreshed.Status != model.UploadFailed {
		t.Errorf("upload status = %s, want failed", refreshed.Status)
	}
	if refreshed.ProcessingError == "" {
		t.Error("processing error not recorded for empty upload")
	}
	if completer.calls != 0 {
		t.Errorf("LLM called %d times for empty upload, want 0", completer.calls)
	}
}

func TestProcessUploadOCRFailure(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db)
	upload, file := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	store := newFakeObjectStore()
	store.objects[file.StorageKey] = pngBytes(t)

	engine := &fakeEngine{err: errors.New("tesseract crashed")}
	pipeline := newTestPipeline(db, store, engine, &fakeCompleter{})

	err := pipeline.ProcessUpload(context.Background(), upload.ID)
	if err == nil {
		t.Fatal("expected OCR failure to propagate")
	}

	var refreshed model.Upload
	if err := db.First(&refreshed, upload.ID).Error; err != nil {
		t.Fatalf("failed to reload upload: %v", err)
	}
	if refreshed.Status != model.UploadFailed {
		t.Errorf("upload status = %s, want failed", refreshed.Status)
	}
	if refreshed.ProcessingError == "" {
		t.Error("processing error not recorded after OCR failure")
	}
}

func TestProcessUploadFlashcardFailureIsIsolated(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db, "Algebra")
	upload, file := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	store := newFakeObjectStore()
	store.objects[file.StorageKey] = pngBytes(t)

	engine := &fakeEngine{text: "1. A question."}
	// one response feeds the paper prediction; the flashcard call then errors
	// because the fake has run out
	completer := &fakeCompleter{responses: []string{"PREDICTED PAPER"}}

	pipeline := newTestPipeline(db, store, engine, completer)
	if err := pipeline.ProcessUpload(context.Background(), upload.ID); err != nil {
		t.Fatalf("flashcard failure must not fail the upload: %v", err)
	}

	var refreshed model.Upload
	if err := db.First(&refreshed, upload.ID).Error; err != nil {
		t.Fatalf("failed to reload upload: %v", err)
	}
	if refreshed.Status != model.UploadCompleted {
		t.Errorf("upload status = %s, want completed", refreshed.Status)
	}

	var cardCount int64
	db.Model(&model.Flashcard{}).Count(&cardCount)
	if cardCount != 0 {
		t.Errorf("stored %d flashcards despite failure, want 0", cardCount)
	}
}

func TestProcessUploadMissingUpload(t *testing.T) {
	db := newTestDB(t)

	pipeline := newTestPipeline(db, newFakeObjectStore(), &fakeEngine{}, &fakeCompleter{})
	if err := pipeline.ProcessUpload(context.Background(), 9999); err != nil {
		t.Fatalf("missing upload should be a no-op, got %v", err)
	}
}
