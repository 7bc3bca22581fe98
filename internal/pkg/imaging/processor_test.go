package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestProcessProducesVariants(t *testing.T) {
	p := NewProcessor(Config{HeroWidth: 200, HeroHeight: 100, CardWidth: 80, CardHeight: 60, Quality: 80})

	variants, err := p.Process(bytes.NewReader(pngBytes(t, 400, 300)))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}

	hero, card := variants[0], variants[1]
	if hero.Name != VariantHero || hero.Width > 200 || hero.Height > 100 {
		t.Fatalf("hero not fitted: %+v", hero)
	}
	if card.Name != VariantCard || card.Width != 80 || card.Height != 60 {
		t.Fatalf("card not filled: %dx%d", card.Width, card.Height)
	}
	if ct, err := DetectType(card.Data); err != nil || ct != "image/jpeg" {
		t.Fatalf("expected jpeg output, got %q (%v)", ct, err)
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	_, err := NewProcessor(DefaultConfig()).Process(strings.NewReader("<html>not an image</html>"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
