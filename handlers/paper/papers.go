package paper

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
	"github.com/sahilchouksey/exam-predict-api/services/storage"
	"github.com/sahilchouksey/exam-predict-api/utils/response"
)

// PaperHandler handles predicted paper requests
type PaperHandler struct {
	db    *gorm.DB
	store storage.ObjectStore
}

// NewPaperHandler creates a new paper handler
func NewPaperHandler(db *gorm.DB, store storage.ObjectStore) *PaperHandler {
	return &PaperHandler{
		db:    db,
		store: store,
	}
}

// ListPapers handles GET /api/v1/papers
func (h *PaperHandler) ListPapers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	examID := c.Query("exam_id", "")

	query := h.db.Model(&model.PredictedPaper{})
	if examID != "" {
		query = query.Where("exam_id = ?", examID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalError(c, "Failed to count papers")
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var papers []model.PredictedPaper
	if err := query.Preload("Upload").
		Order("created_at DESC").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&papers).Error; err != nil {
		return response.InternalError(c, "Failed to fetch papers")
	}

	summaries := make([]model.PredictedPaperSummary, 0, len(papers))
	for i := range papers {
		summaries = append(summaries, papers[i].ToSummary(papers[i].Upload.Year))
	}

	return response.Paginated(c, summaries, pagination)
}

// GetPaper handles GET /api/v1/papers/:id
func (h *PaperHandler) GetPaper(c *fiber.Ctx) error {
	id := c.Params("id")

	var paper model.PredictedPaper
	if err := h.db.Preload("Flashcards").First(&paper, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Predicted paper not found")
		}
		return response.InternalError(c, "Failed to fetch paper")
	}

	return response.Success(c, paper)
}

// GetPaperForUpload handles GET /api/v1/uploads/:id/paper
func (h *PaperHandler) GetPaperForUpload(c *fiber.Ctx) error {
	uploadID := c.Params("id")

	var paper model.PredictedPaper
	if err := h.db.Where("upload_id = ?", uploadID).First(&paper).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "No predicted paper for this upload")
		}
		return response.InternalError(c, "Failed to fetch paper")
	}

	return response.Success(c, paper)
}

// DownloadPaperPDF handles GET /api/v1/papers/:id/pdf
//
// Streams the rendered PDF from object storage. Papers whose render step
// failed have no PDF and return 404.
func (h *PaperHandler) DownloadPaperPDF(c *fiber.Ctx) error {
	id := c.Params("id")

	var paper model.PredictedPaper
	if err := h.db.First(&paper, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Predicted paper not found")
		}
		return response.InternalError(c, "Failed to fetch paper")
	}

	if paper.PDFKey == nil {
		return response.NotFound(c, "No PDF available for this paper")
	}

	data, err := h.store.Download(c.Context(), *paper.PDFKey)
	if err != nil {
		return response.InternalError(c, "Failed to download PDF")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="predicted_paper_`+id+`.pdf"`)
	return c.Send(data)
}
