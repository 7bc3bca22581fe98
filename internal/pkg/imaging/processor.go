package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
)

// MaxFileSize in bytes (10MB)
const MaxFileSize int64 = 10 * 1024 * 1024

// ErrUnsupportedType is returned for uploads that are not JPEG, PNG or GIF
var ErrUnsupportedType = errors.New("unsupported image type")

// Variant names
const (
	VariantHero = "hero"
	VariantCard = "card"
)

// Config for villa image processing
type Config struct {
	HeroWidth  int // hero image bounding box (fit)
	HeroHeight int
	CardWidth  int // listing card (center crop)
	CardHeight int
	Quality    int // JPEG quality 1-100
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		HeroWidth:  1920,
		HeroHeight: 1280,
		CardWidth:  800,
		CardHeight: 600,
		Quality:    85,
	}
}

// Variant is one encoded rendition of an image
type Variant struct {
	Name   string
	Data   []byte
	Width  int
	Height int
}

// ContentType of every encoded variant
const ContentType = "image/jpeg"

// Processor resizes uploaded villa photos
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// DetectType sniffs the content type of data and rejects non-images
func DetectType(head []byte) (string, error) {
	ct := http.DetectContentType(head)
	switch ct {
	case "image/jpeg", "image/png", "image/gif":
		return ct, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
}

// Process decodes an image and renders the hero and card variants as JPEG
func (p *Processor) Process(reader io.Reader) ([]Variant, error) {
	data, err := io.ReadAll(io.LimitReader(reader, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxFileSize)
	}
	if _, err := DetectType(data); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	hero := img
	b := img.Bounds()
	if b.Dx() > p.config.HeroWidth || b.Dy() > p.config.HeroHeight {
		hero = imaging.Fit(img, p.config.HeroWidth, p.config.HeroHeight, imaging.Lanczos)
	}
	card := imaging.Fill(img, p.config.CardWidth, p.config.CardHeight, imaging.Center, imaging.Lanczos)

	variants := make([]Variant, 0, 2)
	for _, v := range []struct {
		name string
		img  image.Image
	}{{VariantHero, hero}, {VariantCard, card}} {
		encoded, err := p.encode(v.img)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", v.name, err)
		}
		variants = append(variants, Variant{
			Name:   v.name,
			Data:   encoded,
			Width:  v.img.Bounds().Dx(),
			Height: v.img.Bounds().Dy(),
		})
	}
	return variants, nil
}

func (p *Processor) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
