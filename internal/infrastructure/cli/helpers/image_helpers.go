package helpers

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/doeshing/recogaize/internal/domain"
)

// LoadImageFile reads path into an ImageFile. The content type comes from
// the extension, falling back to sniffing the first bytes.
func LoadImageFile(path string) (domain.ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ImageFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return domain.ImageFile{
		Name:        filepath.Base(path),
		ContentType: DetectContentType(path, data),
		Data:        data,
	}, nil
}

// DetectContentType guesses the MIME type of an image file.
func DetectContentType(path string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}
