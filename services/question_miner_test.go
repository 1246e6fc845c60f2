package services

import (
	"testing"

	"github.com/sahilchouksey/exam-predict-api/model"
)

func TestSegmentQuestions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			"dot separator",
			"1. What is algebra?\n2. Define calculus.",
			[]string{"1. What is algebra?", "2. Define calculus."},
		},
		{
			"paren separator",
			"1) First question\n2) Second question",
			[]string{"1) First question", "2) Second question"},
		},
		{
			"multiline question body",
			"1. A question\nthat continues here\n2. Next one",
			[]string{"1. A question\nthat continues here", "2. Next one"},
		},
		{
			"two digit numbering",
			"10. Tenth question\n11. Eleventh question",
			[]string{"10. Tenth question", "11. Eleventh question"},
		},
		{
			"preamble before first question is dropped",
			"Instructions: answer all.\n1. Only question",
			[]string{"1. Only question"},
		},
		{"no questions", "Just prose with no numbering.", nil},
		{"empty", "", nil},
		{
			"three digits is not a boundary",
			"100. Not a question marker",
			nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SegmentQuestions(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d segments %q, want %d", len(got), got, len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("segment %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestMineCreatesQuestionsAndTopicLinks(t *testing.T) {
	db := newTestDB(t)
	user, exam, subject, topics := seedTaxonomy(t, db, "Algebra", "Geometry")
	upload, file := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	text := NormalizeText("1. Solve this ALGEBRA problem.\n\n2. A question about nothing in particular.")
	processed := model.ProcessedText{FileID: file.ID, CleanedText: text, Confidence: 0.9}
	if err := db.Create(&processed).Error; err != nil {
		t.Fatalf("failed to seed processed text: %v", err)
	}

	miner := NewQuestionMiner(db, subject.ID)
	questions, err := miner.Mine(&upload, &processed)
	if err != nil {
		t.Fatalf("Mine failed: %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	for i, q := range questions {
		if q.QuestionNumber == nil || *q.QuestionNumber != i+1 {
			t.Errorf("question %d has number %v, want %d", i, q.QuestionNumber, i+1)
		}
		if q.Year != 2023 {
			t.Errorf("question %d year = %d, want 2023", i, q.Year)
		}
		if q.ExamID != exam.ID {
			t.Errorf("question %d exam = %d, want %d", i, q.ExamID, exam.ID)
		}
	}

	// first question matched "Algebra" case-insensitively
	var links []model.QuestionTopic
	if err := db.Where("question_id = ?", questions[0].ID).Find(&links).Error; err != nil {
		t.Fatalf("failed to load topic links: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d topic links for question 1, want 1", len(links))
	}
	if links[0].TopicID != topics[0].ID {
		t.Errorf("linked topic = %d, want %d", links[0].TopicID, topics[0].ID)
	}
	if links[0].Confidence != 1.0 {
		t.Errorf("link confidence = %v, want 1.0", links[0].Confidence)
	}

	// second question matched nothing and fell back to the default subject
	if questions[1].SubjectID != subject.ID {
		t.Errorf("unmatched question subject = %d, want default %d", questions[1].SubjectID, subject.ID)
	}
	var secondLinks int64
	db.Model(&model.QuestionTopic{}).Where("question_id = ?", questions[1].ID).Count(&secondLinks)
	if secondLinks != 0 {
		t.Errorf("got %d topic links for question 2, want 0", secondLinks)
	}
}

func TestMineNoQuestionsIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	user, exam, _, _ := seedTaxonomy(t, db, "Algebra")
	upload, file := seedUpload(t, db, user.ID, exam.ID, 2023, "uploads/1/paper.png")

	processed := model.ProcessedText{FileID: file.ID, CleanedText: "No numbered items here.", Confidence: 0.9}
	if err := db.Create(&processed).Error; err != nil {
		t.Fatalf("failed to seed processed text: %v", err)
	}

	miner := NewQuestionMiner(db, 1)
	questions, err := miner.Mine(&upload, &processed)
	if err != nil {
		t.Fatalf("Mine returned error for question-free text: %v", err)
	}
	if questions != nil {
		t.Errorf("got %d questions, want none", len(questions))
	}
}
