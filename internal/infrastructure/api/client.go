// Package api implements the HTTP boundary to the captioning service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/ports"
)

// maxErrorBody caps how much of a failed response is read looking for detail.
const maxErrorBody = 64 * 1024

// Client talks to the captioning API rooted at baseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient injects the transport used for every call.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(l ports.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient builds a client for baseURL (e.g. http://localhost:8000/api).
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = domain.DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GenerateCaption uploads image as multipart form data and returns the parsed response.
func (c *Client) GenerateCaption(ctx context.Context, image domain.ImageFile) (domain.CaptionResponse, error) {
	body, contentType, err := encodeImage(image)
	if err != nil {
		return domain.CaptionResponse{}, domain.NewCaptionError(domain.MsgGenericError, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+domain.CaptionPath, body)
	if err != nil {
		return domain.CaptionResponse{}, domain.NewCaptionError(domain.MsgGenericError, err)
	}
	req.Header.Set("content-type", contentType)
	req.Header.Set("accept", "application/json")

	var out domain.CaptionResponse
	if err := c.do(req, &out); err != nil {
		return domain.CaptionResponse{}, err
	}
	return out, nil
}

// CheckHealth probes GET /health with the same error mapping as GenerateCaption.
func (c *Client) CheckHealth(ctx context.Context) (domain.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+domain.HealthPath, nil)
	if err != nil {
		return domain.HealthResponse{}, domain.NewCaptionError(domain.MsgGenericError, err)
	}
	req.Header.Set("accept", "application/json")

	var raw json.RawMessage
	if err := c.do(req, &raw); err != nil {
		return domain.HealthResponse{}, err
	}
	health := domain.HealthResponse{Raw: []byte(raw)}
	// The body schema is not guaranteed; a non-object body still counts as healthy.
	_ = json.Unmarshal(raw, &health)
	return health, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.debug("request failed", req, 0, start)
		return domain.NewCaptionError("Error: "+transportMessage(err), err)
	}
	defer resp.Body.Close()
	c.debug("request complete", req, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serverError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewCaptionError(statusMessage(resp.StatusCode), err)
	}
	return nil
}

func (c *Client) debug(msg string, req *http.Request, status int, start time.Time) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, map[string]interface{}{
		"method":      req.Method,
		"url":         req.URL.String(),
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func encodeImage(image domain.ImageFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	name := filepath.Base(image.Name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "upload"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, domain.UploadFieldName, name))
	contentType := image.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(image.Data)
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// serverError maps a non-2xx response to its display message: the detail
// field verbatim when the body carries one, otherwise the status code.
func serverError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Detail interface{} `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if detail, ok := body.Detail.(string); ok && detail != "" {
			return domain.NewCaptionError(detail, nil)
		}
	}
	return domain.NewCaptionError(statusMessage(resp.StatusCode), nil)
}

func statusMessage(status int) string {
	return fmt.Sprintf("Server error: %d", status)
}

// transportMessage strips the method/URL prefix net/http adds so the
// message reads like the native transport error.
func transportMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

var _ ports.CaptionClient = (*Client)(nil)
