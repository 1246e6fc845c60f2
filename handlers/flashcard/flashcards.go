package flashcard

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
	"github.com/sahilchouksey/exam-predict-api/utils/response"
)

// FlashcardHandler handles flashcard requests
type FlashcardHandler struct {
	db *gorm.DB
}

// NewFlashcardHandler creates a new flashcard handler
func NewFlashcardHandler(db *gorm.DB) *FlashcardHandler {
	return &FlashcardHandler{db: db}
}

// ListForPaper handles GET /api/v1/papers/:paper_id/flashcards
func (h *FlashcardHandler) ListForPaper(c *fiber.Ctx) error {
	paperID := c.Params("paper_id")

	var paper model.PredictedPaper
	if err := h.db.First(&paper, paperID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Predicted paper not found")
		}
		return response.InternalError(c, "Failed to fetch paper")
	}

	difficulty := c.Query("difficulty", "")

	query := h.db.Where("predicted_paper_id = ?", paper.ID)
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var cards []model.Flashcard
	if err := query.Order("id").Find(&cards).Error; err != nil {
		return response.InternalError(c, "Failed to fetch flashcards")
	}

	return response.Success(c, cards)
}

// ListForUser handles GET /api/v1/users/:user_id/flashcards
func (h *FlashcardHandler) ListForUser(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	query := h.db.Model(&model.Flashcard{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalError(c, "Failed to count flashcards")
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var cards []model.Flashcard
	if err := query.Order("id").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&cards).Error; err != nil {
		return response.InternalError(c, "Failed to fetch flashcards")
	}

	return response.Paginated(c, cards, pagination)
}
