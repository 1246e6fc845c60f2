package topic

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
	"github.com/sahilchouksey/exam-predict-api/services"
	"github.com/sahilchouksey/exam-predict-api/utils/response"
)

// TopicHandler handles topic prediction requests
type TopicHandler struct {
	db        *gorm.DB
	predictor *services.TopicPredictorService
}

// NewTopicHandler creates a new topic handler
func NewTopicHandler(db *gorm.DB, predictor *services.TopicPredictorService) *TopicHandler {
	return &TopicHandler{
		db:        db,
		predictor: predictor,
	}
}

// PredictTopics handles GET /api/v1/exams/:exam_id/topic-predictions
//
// Query parameters: subject_id (optional, narrows to one subject),
// year (optional target year, defaults to next calendar year),
// top_k (optional, defaults to 10).
func (h *TopicHandler) PredictTopics(c *fiber.Ctx) error {
	examID, err := strconv.ParseUint(c.Params("exam_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid exam_id")
	}

	var exam model.Exam
	if err := h.db.First(&exam, examID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Exam not found")
		}
		return response.InternalError(c, "Failed to fetch exam")
	}

	targetYear, _ := strconv.Atoi(c.Query("year", ""))
	if targetYear == 0 {
		targetYear = time.Now().Year() + 1
	}

	topK, _ := strconv.Atoi(c.Query("top_k", ""))
	if topK <= 0 {
		topK = services.DefaultTopK
	}

	var predictions []services.TopicPrediction
	if subjectParam := c.Query("subject_id", ""); subjectParam != "" {
		subjectID, err := strconv.ParseUint(subjectParam, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid subject_id")
		}
		predictions, err = h.predictor.PredictTopics(uint(examID), uint(subjectID), targetYear, topK)
		if err != nil {
			return response.InternalError(c, "Failed to predict topics")
		}
	} else {
		predictions, err = h.predictor.PredictTopicsForExam(uint(examID), targetYear, topK)
		if err != nil {
			return response.InternalError(c, "Failed to predict topics")
		}
	}

	return response.Success(c, fiber.Map{
		"exam_id":     examID,
		"target_year": targetYear,
		"predictions": predictions,
	})
}
