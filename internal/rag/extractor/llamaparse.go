package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/validation"
)

// LlamaParseExtractor extracts document text using the LlamaParse cloud API.
// Parsing is asynchronous: the file is uploaded, the job is polled until it
// finishes, and the markdown result is fetched.
type LlamaParseExtractor struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	client       *http.Client
}

// LlamaParseConfig configures the LlamaParse extractor.
type LlamaParseConfig struct {
	// APIKey authenticates against the LlamaParse API.
	APIKey string

	// BaseURL is the API base URL (default: https://api.cloud.llamaindex.ai).
	BaseURL string

	// Timeout is the HTTP request timeout (default: 120s for large files).
	Timeout time.Duration

	// PollInterval is the delay between job status checks (default: 2s).
	PollInterval time.Duration
}

// NewLlamaParseExtractor creates a new LlamaParse extractor.
func NewLlamaParseExtractor(cfg LlamaParseConfig) *LlamaParseExtractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloud.llamaindex.ai"
	} else if err := validation.ValidateDocumentURL(cfg.BaseURL); err != nil {
		slog.Warn("invalid llamaparse URL, defaulting to cloud endpoint", "url", cfg.BaseURL, "error", err)
		cfg.BaseURL = "https://api.cloud.llamaindex.ai"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 2 * time.Second
	}

	return &LlamaParseExtractor{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		pollInterval: cfg.PollInterval,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// supportedFormats maps file extensions to parse formats. Plain text and
// markdown are read directly without an API round trip.
var supportedFormats = map[string]string{
	".pdf":  "pdf",
	".docx": "docx",
	".doc":  "docx",
	".pptx": "pptx",
	".ppt":  "pptx",
	".xlsx": "xlsx",
	".html": "html",
	".htm":  "html",
	".md":   "markdown",
	".txt":  "plain",
}

// SupportedFormats returns the file extensions this extractor can handle.
func (e *LlamaParseExtractor) SupportedFormats() []string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, ext)
	}
	return formats
}

// IsSupported checks if a file format is supported for extraction.
func (e *LlamaParseExtractor) IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := supportedFormats[ext]
	return ok
}

// Extract reads a document and returns its text content.
func (e *LlamaParseExtractor) Extract(ctx context.Context, file io.Reader, filename string, mimeType string) (*ExtractionResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	inputFormat, supported := supportedFormats[ext]
	if !supported {
		// For unsupported formats, try to read as plain text
		content, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return &ExtractionResult{
			Text:      string(content),
			PageCount: 1,
			Metadata:  map[string]any{"format": "unknown", "fallback": true},
		}, nil
	}

	// Plain text and markdown need no parsing
	if inputFormat == "plain" || inputFormat == "markdown" {
		content, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return &ExtractionResult{
			Text:      string(content),
			PageCount: 1,
			Metadata:  map[string]any{"format": inputFormat},
		}, nil
	}

	return e.parseViaAPI(ctx, file, filename, inputFormat)
}

type parseJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type parseResult struct {
	Markdown string `json:"markdown"`
}

// parseViaAPI uploads the file, polls the parse job, and fetches the
// markdown result.
func (e *LlamaParseExtractor) parseViaAPI(ctx context.Context, file io.Reader, filename string, inputFormat string) (*ExtractionResult, error) {
	fileContent, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	job, err := e.uploadFile(ctx, fileContent, filename)
	if err != nil {
		return nil, err
	}

	if err := e.waitForJob(ctx, job.ID); err != nil {
		return nil, err
	}

	markdown, err := e.fetchResult(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	cleanText := strings.TrimSpace(markdown)

	// Estimate page count (rough: ~3000 chars per page)
	pageCount := len(cleanText) / 3000
	if pageCount == 0 && len(cleanText) > 0 {
		pageCount = 1
	}

	return &ExtractionResult{
		Text:      cleanText,
		PageCount: pageCount,
		Metadata: map[string]any{
			"format":        inputFormat,
			"job_id":        job.ID,
			"original_size": len(fileContent),
		},
	}, nil
}

// uploadFile submits the document and returns the created parse job.
func (e *LlamaParseExtractor) uploadFile(ctx context.Context, content []byte, filename string) (*parseJob, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("write file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/parsing/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.apiError("upload", resp)
	}

	var job parseJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	if job.ID == "" {
		return nil, fmt.Errorf("upload response missing job id")
	}

	return &job, nil
}

// waitForJob polls the job status until it succeeds or fails.
func (e *LlamaParseExtractor) waitForJob(ctx context.Context, jobID string) error {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		status, err := e.jobStatus(ctx, jobID)
		if err != nil {
			return err
		}

		switch status {
		case "SUCCESS":
			return nil
		case "ERROR", "CANCELED":
			return fmt.Errorf("parse job %s finished with status %s", jobID, status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *LlamaParseExtractor) jobStatus(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/parsing/job/"+jobID, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("check job status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", e.apiError("job status", resp)
	}

	var job parseJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return "", fmt.Errorf("decode job status: %w", err)
	}

	return job.Status, nil
}

func (e *LlamaParseExtractor) fetchResult(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/parsing/job/"+jobID+"/result/markdown", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", e.apiError("fetch result", resp)
	}

	var result parseResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode result: %w", err)
	}

	return result.Markdown, nil
}

func (e *LlamaParseExtractor) apiError(op string, resp *http.Response) error {
	var errorResp struct {
		Detail string `json:"detail"`
	}
	if json.NewDecoder(resp.Body).Decode(&errorResp) == nil && errorResp.Detail != "" {
		return fmt.Errorf("llamaparse %s error: %s", op, errorResp.Detail)
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("llamaparse %s error (status %d): %s", op, resp.StatusCode, string(body))
}
