// Package recognition is the outbound contract with the external
// face-recognition service. The service owns detection and matching; this
// side only verifies report images, nudges the search index, and pushes
// search-status changes after staff resolutions.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/your-org/reunite/internal/config"
	"github.com/your-org/reunite/internal/observability"
)

const (
	ActionAccept   = "accept"
	ActionResearch = "research"
)

// ImageFile is one uploaded photo sent for face-set verification.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// VerifyResult is the response of /verify_faceset. On success Embeddings
// holds one vector per submitted image; on failure Message says which image
// failed and why.
type VerifyResult struct {
	Success    bool        `json:"success"`
	Embeddings [][]float32 `json:"embeddings,omitempty"`
	Message    string      `json:"message,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func NewClient(cfg config.RecognitionConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		timeout: cfg.Timeout,
	}
}

// VerifyFaceSet submits the report images as one multipart request. A
// service-side rejection (success=false) is not an error: the caller
// surfaces Message to the reporter.
func (c *Client) VerifyFaceSet(ctx context.Context, images []ImageFile) (*VerifyResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, img := range images {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="images"; filename="%s"`, img.Filename))
		header.Set("Content-Type", img.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("create multipart part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, fmt.Errorf("write image data: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify_faceset", &body)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		observability.RecognitionCalls.WithLabelValues("verify_faceset", "error").Inc()
		return nil, fmt.Errorf("verify faceset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.RecognitionCalls.WithLabelValues("verify_faceset", "error").Inc()
		return nil, fmt.Errorf("verify faceset: unexpected status %d", resp.StatusCode)
	}

	result := &VerifyResult{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		observability.RecognitionCalls.WithLabelValues("verify_faceset", "error").Inc()
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	observability.RecognitionCalls.WithLabelValues("verify_faceset", "ok").Inc()
	return result, nil
}

// RefreshIndex asks the service to reload its face index after a new report.
// Best-effort: the report is already persisted when this runs.
func (c *Client) RefreshIndex(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/refresh_index", nil)
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		observability.RecognitionCalls.WithLabelValues("refresh_index", "error").Inc()
		return fmt.Errorf("refresh index: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		observability.RecognitionCalls.WithLabelValues("refresh_index", "error").Inc()
		return fmt.Errorf("refresh index: unexpected status %d", resp.StatusCode)
	}
	observability.RecognitionCalls.WithLabelValues("refresh_index", "ok").Inc()
	return nil
}

type searchStatusRequest struct {
	MongoID string `json:"mongo_id"`
	Action  string `json:"action"`
}

// UpdateSearchStatus tells the service to stop (accept) or resume (research)
// searching for a person.
func (c *Client) UpdateSearchStatus(ctx context.Context, personID, action string) error {
	payload, err := json.Marshal(searchStatusRequest{MongoID: personID, Action: action})
	if err != nil {
		return fmt.Errorf("marshal search status: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/update_search_status", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build search status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		observability.RecognitionCalls.WithLabelValues("update_search_status", "error").Inc()
		return fmt.Errorf("update search status: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		observability.RecognitionCalls.WithLabelValues("update_search_status", "error").Inc()
		return fmt.Errorf("update search status: unexpected status %d", resp.StatusCode)
	}
	observability.RecognitionCalls.WithLabelValues("update_search_status", "ok").Inc()
	return nil
}

// NotifySearchStatus dispatches UpdateSearchStatus in the background with its
// own timeout and logging sink. Resolution never waits on it and never sees
// its error; local state is authoritative.
func (c *Client) NotifySearchStatus(personID, action string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if err := c.UpdateSearchStatus(ctx, personID, action); err != nil {
			slog.Error("notify search status", "person_id", personID, "action", action, "error", err)
			return
		}
		slog.Debug("notified search status", "person_id", personID, "action", action)
	}()
}
