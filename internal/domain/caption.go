// Package domain defines core entities and value objects for recogaize.
//
// This file contains the caption payloads exchanged with the captioning API.
// The domain layer is independent of infrastructure concerns: nothing here
// knows about HTTP, files or databases.
package domain

import "time"

// ImageFile is a user-selected image forwarded to the captioning API.
// No validation is implied by constructing one.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (f ImageFile) Size() int {
	return len(f.Data)
}

// CaptionResponse mirrors the JSON body returned by POST /caption.
type CaptionResponse struct {
	Caption string `json:"caption"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HealthResponse mirrors the JSON body returned by GET /health.
// The server does not promise a schema, so the raw body is retained.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Raw         []byte `json:"-"`
}

// CaptionResult is one entry of the bounded caption history.
// Entries are immutable once created.
type CaptionResult struct {
	Caption     string    `json:"caption"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ImageInfo describes what a local probe could learn about an image.
type ImageInfo struct {
	Format      string    `json:"format"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Bytes       int       `json:"bytes"`
	CameraMake  string    `json:"camera_make,omitempty"`
	CameraModel string    `json:"camera_model,omitempty"`
	TakenAt     time.Time `json:"taken_at,omitempty"`
}
