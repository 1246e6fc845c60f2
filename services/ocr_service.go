package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"strings"

	_ "image/jpeg"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"

	"github.com/sahilchouksey/exam-predict-api/model"
	"github.com/sahilchouksey/exam-predict-api/services/storage"
)

const (
	// renderDPI is the resolution PDF pages are rasterized at before OCR
	renderDPI = 300

	// minTextLayerChars is the cutoff below which a PDF text layer is treated
	// as absent (scanned documents often carry a few stray glyphs)
	minTextLayerChars = 200
)

// OCREngine is the OCR capability: one preprocessed image in, recognized text out.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// TesseractEngine runs OCR through the local Tesseract installation
type TesseractEngine struct {
	language string
}

// NewTesseractEngine creates a Tesseract-backed OCR engine
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{language: language}
}

// Recognize extracts text from a single image
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set OCR image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr failed: %w", err)
	}
	return text, nil
}

// OCRService extracts raw text from stored upload files
type OCRService struct {
	store  storage.ObjectStore
	engine OCREngine
}

// NewOCRService creates a new OCR service
func NewOCRService(store storage.ObjectStore, engine OCREngine) *OCRService {
	return &OCRService{
		store:  store,
		engine: engine,
	}
}

// ExtractText downloads the file's bytes and extracts text according to the
// file type. Returns the raw text and the page count (1 for images). Any OCR
// or decode failure is fatal for the file and propagates to the caller.
func (s *OCRService) ExtractText(ctx context.Context, file *model.File) (string, int, error) {
	data, err := s.store.Download(ctx, file.StorageKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch file %d from storage: %w", file.ID, err)
	}

	switch file.FileType {
	case model.FileTypePDF:
		return s.extractFromPDF(ctx, data)
	case model.FileTypeImage:
		text, err := s.extractFromImage(ctx, data)
		return text, 1, err
	default:
		return "", 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file.FileType)
	}
}

// extractFromPDF extracts text from a PDF. If the PDF carries a usable text
// layer it is used directly; otherwise every page is rasterized at 300 DPI and
// OCRed in order, with a newline between pages so words do not join across
// page boundaries.
func (s *OCRService) extractFromPDF(ctx context.Context, data []byte) (string, int, error) {
	if text, pages, ok := textLayer(data); ok {
		log.Printf("OCR: using PDF text layer (%d pages, %d chars)", pages, len(text))
		return text, pages, nil
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	var sb strings.Builder

	for n := 0; n < pages; n++ {
		img, err := doc.ImageDPI(n, renderDPI)
		if err != nil {
			return "", 0, fmt.Errorf("failed to render pdf page %d: %w", n+1, err)
		}

		text, err := s.engine.Recognize(ctx, Binarize(img))
		if err != nil {
			return "", 0, fmt.Errorf("ocr failed on pdf page %d: %w", n+1, err)
		}

		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), pages, nil
}

// extractFromImage decodes an image and OCRs it once
func (s *OCRService) extractFromImage(ctx context.Context, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	text, err := s.engine.Recognize(ctx, Binarize(img))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// textLayer attempts direct text extraction from the PDF's content streams.
// Returns ok=false when the document has no meaningful embedded text, which is
// the norm for scanned papers.
func textLayer(data []byte) (string, int, bool) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, false
	}

	pages := reader.NumPage()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", pages, false
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", pages, false
	}

	text := strings.TrimSpace(buf.String())
	if len(text) < minTextLayerChars {
		return "", pages, false
	}
	return text, pages, true
}
