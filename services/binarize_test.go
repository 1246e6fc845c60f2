package services

import (
	"image"
	"image/color"
	"testing"
)

func TestOtsuThresholdBimodal(t *testing.T) {
	// half dark background, half light foreground
	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 5 {
				gray.SetGray(x, y, color.Gray{Y: 30})
			} else {
				gray.SetGray(x, y, color.Gray{Y: 220})
			}
		}
	}

	threshold := OtsuThreshold(gray)
	if threshold < 30 || threshold >= 220 {
		t.Errorf("threshold = %d, want a value between the two modes", threshold)
	}
}

func TestOtsuThresholdEmptyImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 0, 0))
	if got := OtsuThreshold(gray); got != 0 {
		t.Errorf("threshold for empty image = %d, want 0", got)
	}
}

func TestBinarizeProducesOnlyBlackAndWhite(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}

	out := Binarize(img)
	for i, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d = %d, want 0 or 255", i, v)
		}
	}
}

func TestBinarizeSeparatesInkFromPaper(t *testing.T) {
	// white page with a dark stripe of "ink"
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetGray(x, y, color.Gray{Y: 240})
		}
	}
	for x := 0; x < 10; x++ {
		img.SetGray(x, 5, color.Gray{Y: 20})
	}

	out := Binarize(img)
	if out.GrayAt(0, 5).Y != 0 {
		t.Error("ink pixel not mapped to black")
	}
	if out.GrayAt(0, 0).Y != 255 {
		t.Error("paper pixel not mapped to white")
	}
}
