package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sahilchouksey/exam-predict-api/model"
)

func TestPredictAndStore(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db)
	upload, _ := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	completer := &fakeCompleter{responses: []string{"PREDICTED EXAM PAPER\n1. New question."}}
	store := newFakeObjectStore()
	renderer := &fakeRenderer{}

	svc := NewPaperPredictionService(db, completer, store, renderer, NewTopicPredictorService(db))

	paper, err := svc.PredictAndStore(context.Background(), &upload, "1. Old question about algebra.")
	if err != nil {
		t.Fatalf("PredictAndStore failed: %v", err)
	}

	if paper.PredictedText != "PREDICTED EXAM PAPER\n1. New question." {
		t.Errorf("unexpected predicted text: %q", paper.PredictedText)
	}
	if paper.PDFKey == nil {
		t.Fatal("paper has no PDF key after successful render")
	}
	if _, err := store.Download(context.Background(), *paper.PDFKey); err != nil {
		t.Errorf("rendered PDF not found in storage: %v", err)
	}

	var stored model.PredictedPaper
	if err := db.First(&stored, paper.ID).Error; err != nil {
		t.Fatalf("paper was not persisted: %v", err)
	}
	if stored.PDFKey == nil || *stored.PDFKey != *paper.PDFKey {
		t.Error("PDF key not committed to the database")
	}
}

func TestPredictAndStoreTruncatesContext(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db)
	upload, _ := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	completer := &fakeCompleter{responses: []string{"paper"}}
	svc := NewPaperPredictionService(db, completer, newFakeObjectStore(), &fakeRenderer{}, nil)

	long := strings.Repeat("x", maxPromptContextChars+500)
	if _, err := svc.PredictAndStore(context.Background(), &upload, long); err != nil {
		t.Fatalf("PredictAndStore failed: %v", err)
	}

	if len(completer.prompts) != 1 {
		t.Fatalf("LLM called %d times, want 1", len(completer.prompts))
	}
	// the prompt wraps the context, so it must be shorter than context + template headroom
	if len(completer.prompts[0]) > maxPromptContextChars+2000 {
		t.Errorf("prompt length %d suggests the context was not truncated", len(completer.prompts[0]))
	}
}

func TestPredictAndStoreEmptyContext(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db)
	upload, _ := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	completer := &fakeCompleter{responses: []string{"unused"}}
	svc := NewPaperPredictionService(db, completer, newFakeObjectStore(), &fakeRenderer{}, nil)

	_, err := svc.PredictAndStore(context.Background(), &upload, "  \n\n ")
	if !errors.Is(err, ErrEmptyContext) {
		t.Fatalf("got %v, want ErrEmptyContext", err)
	}
	if completer.calls != 0 {
		t.Errorf("LLM was called %d times for empty context, want 0", completer.calls)
	}
}

func TestPredictAndStoreSurvivesRenderFailure(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db)
	upload, _ := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	completer := &fakeCompleter{responses: []string{"paper text"}}
	renderer := &fakeRenderer{err: errors.New("render exploded")}

	svc := NewPaperPredictionService(db, completer, newFakeObjectStore(), renderer, nil)

	paper, err := svc.PredictAndStore(context.Background(), &upload, "1. Something.")
	if err != nil {
		t.Fatalf("render failure should not fail prediction: %v", err)
	}
	if paper.PDFKey != nil {
		t.Error("paper has a PDF key despite render failure")
	}

	var stored model.PredictedPaper
	if err := db.First(&stored, paper.ID).Error; err != nil {
		t.Fatalf("paper text was lost on render failure: %v", err)
	}
	if stored.PredictedText != "paper text" {
		t.Errorf("stored text = %q, want the predicted text", stored.PredictedText)
	}
}

func TestPredictAndStoreSurvivesUploadFailure(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db)
	upload, _ := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	completer := &fakeCompleter{responses: []string{"paper text"}}
	store := newFakeObjectStore()
	store.uploadErr = errors.New("storage down")

	svc := NewPaperPredictionService(db, completer, store, &fakeRenderer{}, nil)

	paper, err := svc.PredictAndStore(context.Background(), &upload, "1. Something.")
	if err != nil {
		t.Fatalf("storage failure should not fail prediction: %v", err)
	}
	if paper.PDFKey != nil {
		t.Error("paper has a PDF key despite storage failure")
	}
}

func TestPredictAndStoreLLMErrorPropagates(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db)
	upload, _ := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	completer := &fakeCompleter{err: errors.New("model unavailable")}
	svc := NewPaperPredictionService(db, completer, newFakeObjectStore(), &fakeRenderer{}, nil)

	if _, err := svc.PredictAndStore(context.Background(), &upload, "1. Something."); err == nil {
		t.Fatal("expected error from failing LLM, got nil")
	}

	var count int64
	db.Model(&model.PredictedPaper{}).Count(&count)
	if count != 0 {
		t.Errorf("found %d stored papers after LLM failure, want 0", count)
	}
}
