// Package imageprobe inspects image bytes locally: format, dimensions and
// a best-effort EXIF summary.
package imageprobe

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/evanoberholster/imagemeta"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/ports"
)

// ErrNotImage is returned when no registered decoder recognises the bytes.
var ErrNotImage = errors.New("unrecognised image format")

// Prober implements ports.ImageProber.
type Prober struct{}

// New returns a Prober.
func New() *Prober {
	return &Prober{}
}

// Probe decodes the image header and, where present, EXIF camera data.
func (Prober) Probe(data []byte) (domain.ImageInfo, error) {
	if len(data) == 0 {
		return domain.ImageInfo{}, ErrNotImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.ImageInfo{Bytes: len(data)}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	info := domain.ImageInfo{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Bytes:  len(data),
	}

	// EXIF is optional; PNG/GIF usually carry none.
	if exifData, err := imagemeta.Decode(bytes.NewReader(data)); err == nil {
		info.CameraMake = strings.TrimSpace(exifData.Make)
		info.CameraModel = strings.TrimSpace(exifData.Model)
		switch {
		case !exifData.DateTimeOriginal().IsZero():
			info.TakenAt = exifData.DateTimeOriginal()
		case !exifData.CreateDate().IsZero():
			info.TakenAt = exifData.CreateDate()
		}
	}
	return info, nil
}

var _ ports.ImageProber = Prober{}
