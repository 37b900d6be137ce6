// internal/ocr/ocr.go
// Package ocr extracts text from images through an external OCR service.
package ocr

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
	"strings"
	"time"
)

// OCR.space defaults. The demo key is heavily rate limited.
const (
	DefaultEndpoint = "https://api.ocr.space/parse/image"
	DefaultAPIKey   = "helloworld"
	DefaultLanguage = "eng"
	DefaultTimeout  = 30 * time.Second
)

var (
	// ErrOCRFailed indicates the service could not return text
	ErrOCRFailed = errors.New("ocr failed")
	// ErrEmptyImage indicates an image with no data
	ErrEmptyImage = errors.New("image has no data")
)

// Image is an uploaded image file.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Engine extracts text from an image.
type Engine interface {
	Extract(ctx context.Context, img Image) (string, error)
}

// SpaceConfig configures a SpaceClient.
type SpaceConfig struct {
	Endpoint string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// DefaultSpaceConfig returns the public OCR.space endpoint with the demo key.
func DefaultSpaceConfig() SpaceConfig {
	return SpaceConfig{
		Endpoint: DefaultEndpoint,
		APIKey:   DefaultAPIKey,
		Language: DefaultLanguage,
		Timeout:  DefaultTimeout,
	}
}

// SpaceClient is an Engine backed by the OCR.space parse API.
type SpaceClient struct {
	config     SpaceConfig
	httpClient *http.Client
}

// NewSpaceClient returns a client; a nil httpClient uses one with cfg.Timeout.
func NewSpaceClient(cfg SpaceConfig, httpClient *http.Client) *SpaceClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &SpaceClient{config: cfg, httpClient: httpClient}
}

// spaceResponse is the subset of the parse/image reply we read.
type spaceResponse struct {
	ParsedResults []struct {
		ParsedText        string `json:"ParsedText"`
		FileParseExitCode int    `json:"FileParseExitCode"`
		ErrorMessage      string `json:"ErrorMessage"`
	} `json:"ParsedResults"`
	OCRExitCode           int             `json:"OCRExitCode"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// Extract uploads img and returns the text of the first parsed result.
func (c *SpaceClient) Extract(ctx context.Context, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrEmptyImage
	}

	body, contentType, err := c.form(img)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, body)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrOCRFailed, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOCRFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status code %d", ErrOCRFailed, resp.StatusCode)
	}

	var parsed spaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrOCRFailed, err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("%w: %s", ErrOCRFailed, errorText(parsed.ErrorMessage))
	}
	if len(parsed.ParsedResults) == 0 {
		return "", fmt.Errorf("%w: no parsed results", ErrOCRFailed)
	}
	return parsed.ParsedResults[0].ParsedText, nil
}

func (c *SpaceClient) form(img Image) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("apikey", c.config.APIKey); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("language", c.config.Language); err != nil {
		return nil, "", err
	}

	name := img.Name
	if name == "" {
		name = "image"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="filename"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// errorText flattens ErrorMessage, which the API sends as a string or a
// list of strings.
func errorText(raw json.RawMessage) string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return "processing error"
}
