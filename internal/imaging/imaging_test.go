package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/crisoull/bodega/internal/validate"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func createTestGIF(w, h int) []byte {
	var buf bytes.Buffer
	if err := gif.Encode(&buf, testImage(w, h), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func createTestBMP(w, h int) []byte {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestProcessAcceptedRasterFormats(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"jpeg", createTestJPEG(100, 100)},
		{"png", createTestPNG(100, 100)},
		{"gif", createTestGIF(100, 100)},
		{"bmp", createTestBMP(100, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Process(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if result.MIME != "image/jpeg" {
				t.Errorf("expected normalized JPEG output, got %q", result.MIME)
			}
			if len(result.Data) == 0 {
				t.Error("expected non-empty image data")
			}
		})
	}
}

func TestProcessDownscalesLargeImage(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestJPEG(2048, 1024)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if w := img.Bounds().Dx(); w != MaxDimension {
		t.Errorf("expected width %d, got %d", MaxDimension, w)
	}
	if h := img.Bounds().Dy(); h != MaxDimension/2 {
		t.Errorf("expected height %d, got %d", MaxDimension/2, h)
	}
}

func TestProcessKeepsSmallImageSize(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestPNG(80, 60)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 60 {
		t.Errorf("small image was resized to %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("this is not an image at all")))
	if err == nil {
		t.Error("expected non-image payload rejected")
	}
}

func TestProcessRejectsCorruptPayload(t *testing.T) {
	// A valid GIF signature followed by garbage must fail decoding,
	// not slip through as stored bytes.
	data := append([]byte("GIF89a"), bytes.Repeat([]byte{0xde, 0xad}, 64)...)
	if _, err := Process(bytes.NewReader(data)); err == nil {
		t.Error("expected corrupt GIF payload rejected")
	}
}

func TestProcessRejectsOversizePayload(t *testing.T) {
	data := append(createTestPNG(1, 1), make([]byte, validate.MaxImageLen)...)
	if _, err := Process(bytes.NewReader(data)); err == nil {
		t.Error("expected oversized payload rejected")
	}
}
