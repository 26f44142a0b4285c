package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/ports"
)

// PreflightClient rejects uploads the server would refuse before any bytes
// leave the machine. Messages match the server's detail strings.
type PreflightClient struct {
	next     ports.CaptionClient
	prober   ports.ImageProber
	maxBytes int64
}

// NewPreflightClient wraps next with local validation. A non-positive
// maxBytes disables the size check.
func NewPreflightClient(next ports.CaptionClient, prober ports.ImageProber, maxBytes int64) *PreflightClient {
	return &PreflightClient{next: next, prober: prober, maxBytes: maxBytes}
}

// GenerateCaption validates image and forwards it when acceptable.
func (p *PreflightClient) GenerateCaption(ctx context.Context, image domain.ImageFile) (domain.CaptionResponse, error) {
	if err := p.Validate(image); err != nil {
		return domain.CaptionResponse{}, err
	}
	return p.next.GenerateCaption(ctx, image)
}

// CheckHealth is not validated.
func (p *PreflightClient) CheckHealth(ctx context.Context) (domain.HealthResponse, error) {
	return p.next.CheckHealth(ctx)
}

// Validate applies the server's upload rules locally.
func (p *PreflightClient) Validate(image domain.ImageFile) error {
	if image.ContentType != "" && !strings.HasPrefix(image.ContentType, "image/") {
		return domain.NewCaptionError(domain.MsgNotImage, nil)
	}
	if image.Size() == 0 {
		return domain.NewCaptionError(domain.MsgEmptyFile, nil)
	}
	if p.maxBytes > 0 && int64(image.Size()) > p.maxBytes {
		return domain.NewCaptionError(sizeMessage(p.maxBytes), nil)
	}
	if p.prober != nil {
		if _, err := p.prober.Probe(image.Data); err != nil {
			return domain.NewCaptionError(domain.MsgNotImage, err)
		}
	}
	return nil
}

func sizeMessage(maxBytes int64) string {
	const mib = 1024 * 1024
	if maxBytes%mib == 0 {
		return fmt.Sprintf("File size too large. Maximum size is %dMB", maxBytes/mib)
	}
	return fmt.Sprintf("File size too large. Maximum size is %d bytes", maxBytes)
}

var _ ports.CaptionClient = (*PreflightClient)(nil)
