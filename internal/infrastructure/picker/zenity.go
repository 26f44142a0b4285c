// Package picker opens a native file dialog for choosing images.
package picker

import (
	"context"
	"errors"

	"github.com/ncruces/zenity"

	"github.com/doeshing/recogaize/internal/ports"
)

// ErrCanceled is returned when the user dismisses the dialog.
var ErrCanceled = errors.New("file selection canceled")

// ImagePatterns lists the extensions offered by the dialog filter.
var ImagePatterns = []string{
	"*.jpg", "*.jpeg", "*.png", "*.gif", "*.webp", "*.bmp", "*.tif", "*.tiff",
	"*.heic", "*.heif",
}

// ZenityPicker implements ports.FilePicker with a native dialog.
type ZenityPicker struct {
	title string
}

// NewZenityPicker returns a picker with the given dialog title.
func NewZenityPicker(title string) *ZenityPicker {
	if title == "" {
		title = "Select images to caption"
	}
	return &ZenityPicker{title: title}
}

// PickImages shows a multi-select dialog filtered to images.
func (p *ZenityPicker) PickImages(ctx context.Context) ([]string, error) {
	selected, err := zenity.SelectFileMultiple(
		zenity.Context(ctx),
		zenity.Title(p.title),
		zenity.FileFilters{
			{Name: "Images", Patterns: ImagePatterns},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil, ErrCanceled
		}
		return nil, err
	}
	return selected, nil
}

var _ ports.FilePicker = (*ZenityPicker)(nil)
