package upload

import (
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sahilchouksey/exam-predict-api/model"
	"github.com/sahilchouksey/exam-predict-api/services/storage"
	"github.com/sahilchouksey/exam-predict-api/utils/response"
	"github.com/sahilchouksey/exam-predict-api/utils/validation"
	"github.com/sahilchouksey/exam-predict-api/workers"
)

// maxFilesPerUpload caps how many documents one submission may carry
const maxFilesPerUpload = 10

// UploadHandler handles exam paper upload requests
type UploadHandler struct {
	db         *gorm.DB
	validator  *validation.Validator
	store      storage.ObjectStore
	dispatcher *workers.Dispatcher
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(db *gorm.DB, store storage.ObjectStore, dispatcher *workers.Dispatcher) *UploadHandler {
	return &UploadHandler{
		db:         db,
		validator:  validation.NewValidator(),
		store:      store,
		dispatcher: dispatcher,
	}
}

// SubmitUpload handles POST /api/v1/uploads
//
// Multipart form fields: user_id, exam_id, year, plus one or more "files"
// parts. Files are stored first, then the upload is queued; the response is
// 202 with the pending upload, and processing happens asynchronously.
func (h *UploadHandler) SubmitUpload(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.FormValue("user_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid or missing user_id")
	}

	examID, err := strconv.ParseUint(c.FormValue("exam_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid or missing exam_id")
	}

	year, err := strconv.Atoi(c.FormValue("year"))
	if err != nil || year < 1900 || year > 2100 {
		return response.BadRequest(c, "Invalid or missing year")
	}

	// Verify referenced rows exist before accepting anything
	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "User not found")
		}
		return response.InternalError(c, "Failed to fetch user")
	}

	var exam model.Exam
	if err := h.db.First(&exam, examID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Exam not found")
		}
		return response.InternalError(c, "Failed to fetch exam")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "Invalid multipart form")
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return response.BadRequest(c, "At least one file is required")
	}
	if len(fileHeaders) > maxFilesPerUpload {
		return response.BadRequest(c, "Too many files in one upload")
	}

	// Reject unsupported formats up front so nothing is stored for a doomed
	// upload
	for _, fh := range fileHeaders {
		if fileTypeFor(fh.Filename) == "" {
			return response.BadRequest(c, "Unsupported file format: "+fh.Filename)
		}
	}

	upload := model.Upload{
		UserID: uint(userID),
		ExamID: uint(examID),
		Year:   year,
		Status: model.UploadPending,
	}
	if err := h.db.Create(&upload).Error; err != nil {
		return response.InternalError(c, "Failed to create upload")
	}

	for _, fh := range fileHeaders {
		if err := h.storeFile(c, &upload, fh); err != nil {
			log.Printf("UploadHandler: failed to store %s for upload %d: %v", fh.Filename, upload.ID, err)
			return response.InternalError(c, "Failed to store uploaded file")
		}
	}

	if err := h.dispatcher.EnqueueProcessUpload(c.Context(), upload.ID); err != nil {
		// the upload stays pending; the stale pending cleanup job will
		// eventually fail it if nothing retries
		log.Printf("UploadHandler: failed to enqueue upload %d: %v", upload.ID, err)
		return response.InternalError(c, "Failed to queue upload for processing")
	}

	if err := h.db.Preload("Files").First(&upload, upload.ID).Error; err != nil {
		return response.InternalError(c, "Failed to fetch created upload")
	}

	return response.Accepted(c, "Upload queued for processing", upload.ToResponse())
}

// GetUpload handles GET /api/v1/uploads/:id
func (h *UploadHandler) GetUpload(c *fiber.Ctx) error {
	id := c.Params("id")

	var upload model.Upload
	if err := h.db.Preload("Files").First(&upload, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Upload not found")
		}
		return response.InternalError(c, "Failed to fetch upload")
	}

	return response.Success(c, upload)
}

// ListUploads handles GET /api/v1/uploads
func (h *UploadHandler) ListUploads(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	status := c.Query("status", "")
	userID := c.Query("user_id", "")

	query := h.db.Model(&model.Upload{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalError(c, "Failed to count uploads")
	}

	pagination := response.CalculatePagination(page, limit, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var uploads []model.Upload
	if err := query.Preload("Files").
		Order("created_at DESC").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&uploads).Error; err != nil {
		return response.InternalError(c, "Failed to fetch uploads")
	}

	items := make([]*model.UploadResponse, 0, len(uploads))
	for i := range uploads {
		items = append(items, uploads[i].ToResponse())
	}

	return response.Paginated(c, items, pagination)
}

// storeFile uploads one file's bytes to object storage and records the row
func (h *UploadHandler) storeFile(c *fiber.Ctx, upload *model.Upload, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	key := storage.UploadFileKey(upload.ID, fh.Filename)
	if _, err := h.store.Upload(c.Context(), key, data, storage.ContentTypeFor(fh.Filename)); err != nil {
		return err
	}

	file := model.File{
		UploadID:         upload.ID,
		FileType:         fileTypeFor(fh.Filename),
		StorageKey:       key,
		OriginalFilename: fh.Filename,
	}
	return h.db.Create(&file).Error
}

// fileTypeFor maps a filename extension to a FileType, empty when unsupported
func fileTypeFor(filename string) model.FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return model.FileTypePDF
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return model.FileTypeImage
	default:
		return ""
	}
}
