// Package parseclient implements port.ParseServiceClient (C2): submit a
// parse task, poll it to completion, and fetch its structured result.
package parseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"docingest/internal/port"
)

// Config points the client at one parse-service deployment.
type Config struct {
	BaseURL    string
	AuthHeader string
	AuthToken  string
	Timeout    time.Duration
}

// Client implements port.ParseServiceClient over the three task endpoints.
type Client struct {
	cfg    Config
	client *http.Client
}

// New builds a Client. A zero Timeout defaults to 60s per HTTP call.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

var _ port.ParseServiceClient = (*Client)(nil)

func (c *Client) authorize(req *http.Request) {
	if c.cfg.AuthToken != "" {
		header := c.cfg.AuthHeader
		if header == "" {
			header = "Authorization"
		}
		req.Header.Set(header, c.cfg.AuthToken)
	}
}

type submitResponse struct {
	TaskID string `json:"taskId"`
}

// Submit posts a multipart task to /api/v1/tasks/submit.
func (c *Client) Submit(ctx context.Context, fileBytes []byte, fileName string, opts port.SubmitOptions) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(fileBytes); err != nil {
		return "", fmt.Errorf("writing form file: %w", err)
	}

	fields := map[string]string{
		"backend":        opts.Backend,
		"lang":           opts.Lang,
		"method":         opts.Method,
		"formula_enable": strconv.FormatBool(opts.FormulaEnable),
		"table_enable":   strconv.FormatBool(opts.TableEnable),
		"priority":       strconv.Itoa(opts.Priority),
	}
	if opts.StartPage != nil {
		fields["start_page_id"] = strconv.Itoa(*opts.StartPage)
	}
	if opts.EndPage != nil {
		fields["end_page_id"] = strconv.Itoa(*opts.EndPage)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	url := c.cfg.BaseURL + "/api/v1/tasks/submit"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newSubmitError(fmt.Errorf("%s", truncate(string(respBody), 500)), resp.StatusCode)
	}

	var parsed submitResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &DecodeError{Err: err}
	}
	return parsed.TaskID, nil
}

type statusResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

// WaitForCompletion polls /api/v1/tasks/{taskId} until a terminal status or
// overallTimeout elapses.
func (c *Client) WaitForCompletion(ctx context.Context, taskID string, pollInterval, overallTimeout time.Duration) error {
	deadline := time.Now().Add(overallTimeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		status, errMsg, err := c.pollOnce(ctx, taskID)
		if err != nil {
			return err
		}
		switch status {
		case "completed":
			return nil
		case "failed":
			return &TaskError{Message: errMsg}
		case "cancelled":
			return &CancelledError{TaskID: taskID}
		}

		if time.Now().After(deadline) {
			return &TimeoutError{TaskID: taskID}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) pollOnce(ctx context.Context, taskID string) (status, errMsg string, err error) {
	url := fmt.Sprintf("%s/api/v1/tasks/%s", c.cfg.BaseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &NetworkError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", newSubmitError(fmt.Errorf("poll status %s", truncate(string(respBody), 500)), resp.StatusCode)
	}

	var parsed statusResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", "", &DecodeError{Err: err}
	}
	return parsed.Status, parsed.ErrorMessage, nil
}

type fetchResponse struct {
	Markdown struct {
		Content string `json:"content"`
	} `json:"md"`
	ContentList []struct {
		Type      string   `json:"type"`
		Text      string   `json:"text"`
		Captions  []string `json:"image_caption"`
		Footnotes []string `json:"image_footnote"`
		ImageName string   `json:"img_path"`
		TableHTML string   `json:"table_body"`
	} `json:"content_list"`
	Middle struct {
		PDFInfo []struct {
			PageIdx int     `json:"page_idx"`
			Width   float64 `json:"page_size_w"`
			Height  float64 `json:"page_size_h"`
			Blocks  []struct {
				Type      string     `json:"type"`
				BBox      [4]float64 `json:"bbox"`
				TextLevel *int       `json:"text_level"`
			} `json:"preproc_blocks"`
		} `json:"pdf_info"`
	} `json:"middle_json"`
	Images map[string]string `json:"images"` // name -> base64
}

// FetchData retrieves the structured result blob from
// /api/v1/tasks/{taskId}/data.
func (c *Client) FetchData(ctx context.Context, taskID string) (*port.TaskData, error) {
	url := fmt.Sprintf(
		"%s/api/v1/tasks/%s/data?include_fields=md,content_list,middle_json,images&upload_images=false&include_image_base64=true&include_metadata=false",
		c.cfg.BaseURL, taskID,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newSubmitError(fmt.Errorf("fetch data %s", truncate(string(respBody), 500)), resp.StatusCode)
	}

	var parsed fetchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &DecodeError{Err: err}
	}

	return decodeTaskData(&parsed)
}
