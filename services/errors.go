package services

import "errors"

var (
	// ErrUnsupportedFormat marks a file type the OCR extractor cannot handle.
	// Fatal to the submission; nothing is processed.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyContext marks a paper prediction attempt with no input text
	ErrEmptyContext = errors.New("empty context text for prediction")

	// ErrNoProcessableContent marks an upload whose files produced no usable
	// cleaned text at all
	ErrNoProcessableContent = errors.New("no processable content in upload")

	// ErrRenderFailure marks a PDF generation error. The predicted text
	// survives it; only the rendered document is missing.
	ErrRenderFailure = errors.New("failed to render predicted paper")
)
