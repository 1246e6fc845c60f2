package services

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
)

// questionBoundary marks the start of a question: a line beginning with one or
// two digits, a "." or ")" separator, then whitespace. A question's text runs
// from its boundary up to the next boundary or the end of the text, and keeps
// its numbered prefix.
var questionBoundary = regexp.MustCompile(`(?m)^\d{1,2}[.)]\s`)

// SegmentQuestions splits cleaned text into question segments in input order
func SegmentQuestions(text string) []string {
	locs := questionBoundary.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	segments := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if seg := strings.TrimSpace(text[loc[0]:end]); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// QuestionMiner splits cleaned text into question records and tags them with
// topics from the upload's exam vocabulary
type QuestionMiner struct {
	db *gorm.DB
	// defaultSubjectID is used when no matched topic resolves a subject
	defaultSubjectID uint
}

// NewQuestionMiner creates a new question miner
func NewQuestionMiner(db *gorm.DB, defaultSubjectID uint) *QuestionMiner {
	return &QuestionMiner{
		db:               db,
		defaultSubjectID: defaultSubjectID,
	}
}

// Mine extracts questions from one processed text and persists them together
// with their topic links. Sequence numbers are assigned 1..N in discovery
// order regardless of the digit prefix in the source. Finding no questions is
// not an error.
func (m *QuestionMiner) Mine(upload *model.Upload, processed *model.ProcessedText) ([]model.Question, error) {
	segments := SegmentQuestions(processed.CleanedText)
	if len(segments) == 0 {
		log.Printf("Miner: no questions found in processed text %d", processed.ID)
		return nil, nil
	}

	log.Printf("Miner: found %d questions in processed text %d", len(segments), processed.ID)

	topics, err := m.examTopics(upload.ExamID)
	if err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(segments))

	for idx, segment := range segments {
		matched := matchTopics(segment, topics)

		question := model.Question{
			ProcessedTextID: processed.ID,
			ExamID:          upload.ExamID,
			SubjectID:       m.resolveSubject(matched),
			Year:            upload.Year,
			QuestionText:    segment,
		}
		seq := idx + 1
		question.QuestionNumber = &seq

		if err := m.db.Create(&question).Error; err != nil {
			return nil, fmt.Errorf("failed to store question %d: %w", seq, err)
		}

		for _, topic := range matched {
			link := model.QuestionTopic{
				QuestionID: question.ID,
				TopicID:    topic.ID,
				Confidence: 1.0,
			}
			if err := m.db.Create(&link).Error; err != nil {
				return nil, fmt.Errorf("failed to link question %d to topic %q: %w", seq, topic.Name, err)
			}
			log.Printf("Miner: assigned topic %q to question %d", topic.Name, seq)
		}

		questions = append(questions, question)
	}

	return questions, nil
}

// examTopics loads the topic vocabulary for an exam across all its subjects
func (m *QuestionMiner) examTopics(examID uint) ([]model.Topic, error) {
	var topics []model.Topic
	err := m.db.
		Joins("JOIN subjects ON subjects.id = topics.subject_id").
		Where("subjects.exam_id = ?", examID).
		Order("topics.id").
		Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load topics for exam %d: %w", examID, err)
	}
	return topics, nil
}

// resolveSubject infers the question's subject from its first matched topic,
// falling back to the configured default when nothing matched
func (m *QuestionMiner) resolveSubject(matched []model.Topic) uint {
	if len(matched) > 0 {
		return matched[0].SubjectID
	}
	return m.defaultSubjectID
}

// matchTopics returns every topic whose name appears case-insensitively as a
// substring of the question text, at most once per topic
func matchTopics(questionText string, topics []model.Topic) []model.Topic {
	lower := strings.ToLower(questionText)
	seen := make(map[uint]bool, len(topics))

	var matched []model.Topic
	for _, topic := range topics {
		if seen[topic.ID] {
			continue
		}
		if strings.Contains(lower, strings.ToLower(topic.Name)) {
			seen[topic.ID] = true
			matched = append(matched, topic)
		}
	}
	return matched
}
