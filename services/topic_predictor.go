package services

import (
	"fmt"
	"math"
	"sort"

	"gorm.io/gorm"
)

// DefaultTopK is the default number of topic predictions returned
const DefaultTopK = 10

// TopicPrediction is one ranked topic with its raw score and probability
type TopicPrediction struct {
	TopicID     uint    `json:"topic_id"`
	Topic       string  `json:"topic"`
	Score       float64 `json:"score"`
	Probability float64 `json:"probability"`
}

// topicYearCount is one (topic, year) aggregation row
type topicYearCount struct {
	TopicID uint
	Name    string
	Year    int
	Count   int64
}

// TopicPredictorService ranks topics by recency-weighted historical frequency
type TopicPredictorService struct {
	db *gorm.DB
}

// NewTopicPredictorService creates a new topic predictor
func NewTopicPredictorService(db *gorm.DB) *TopicPredictorService {
	return &TopicPredictorService{db: db}
}

// PredictTopics returns the top-K topics for an exam/subject ranked by a
// recency-weighted frequency score. targetYear is accepted for API stability
// but does not influence the weighting yet. No historical data means an empty
// result, not an error.
func (s *TopicPredictorService) PredictTopics(examID, subjectID uint, targetYear, topK int) ([]TopicPrediction, error) {
	rows, err := s.frequencyRows(examID, &subjectID)
	if err != nil {
		return nil, err
	}
	return rankTopics(rows, topK), nil
}

// PredictTopicsForExam aggregates across every subject of the exam. Used to
// snapshot the topic ranking next to a predicted paper.
func (s *TopicPredictorService) PredictTopicsForExam(examID uint, targetYear, topK int) ([]TopicPrediction, error) {
	rows, err := s.frequencyRows(examID, nil)
	if err != nil {
		return nil, err
	}
	return rankTopics(rows, topK), nil
}

// frequencyRows counts historical questions per (topic, year)
func (s *TopicPredictorService) frequencyRows(examID uint, subjectID *uint) ([]topicYearCount, error) {
	query := s.db.
		Table("question_topics").
		Select("topics.id AS topic_id, topics.name AS name, questions.year AS year, COUNT(questions.id) AS count").
		Joins("JOIN topics ON topics.id = question_topics.topic_id").
		Joins("JOIN questions ON questions.id = question_topics.question_id").
		Where("questions.exam_id = ?", examID).
		Group("topics.id, topics.name, questions.year")

	if subjectID != nil {
		query = query.Where("questions.subject_id = ?", *subjectID)
	}

	var rows []topicYearCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate topic frequencies for exam %d: %w", examID, err)
	}
	return rows, nil
}

// rankTopics computes recency-weighted scores and normalizes them into
// probabilities. Each (topic, year) pair contributes
// count × (year − minYear + 1), so recent years count linearly more. Ties
// break by ascending topic name for determinism.
func rankTopics(rows []topicYearCount, topK int) []TopicPrediction {
	if len(rows) == 0 {
		return []TopicPrediction{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	minYear := rows[0].Year
	for _, r := range rows {
		if r.Year < minYear {
			minYear = r.Year
		}
	}

	type entry struct {
		name  string
		score float64
	}
	scores := make(map[uint]*entry, len(rows))
	var order []uint

	for _, r := range rows {
		weight := float64(r.Year - minYear + 1)
		if e, ok := scores[r.TopicID]; ok {
			e.score += float64(r.Count) * weight
		} else {
			scores[r.TopicID] = &entry{name: r.Name, score: float64(r.Count) * weight}
			order = append(order, r.TopicID)
		}
	}

	var total float64
	for _, e := range scores {
		total += e.score
	}
	if total == 0 {
		return []TopicPrediction{}
	}

	predictions := make([]TopicPrediction, 0, len(order))
	for _, id := range order {
		e := scores[id]
		predictions = append(predictions, TopicPrediction{
			TopicID:     id,
			Topic:       e.name,
			Score:       round2(e.score),
			Probability: round3(e.score / total),
		})
	}

	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].Score != predictions[j].Score {
			return predictions[i].Score > predictions[j].Score
		}
		return predictions[i].Topic < predictions[j].Topic
	})

	if len(predictions) > topK {
		predictions = predictions[:topK]
	}
	return predictions
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
