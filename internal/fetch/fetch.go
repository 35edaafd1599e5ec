// Package fetch downloads documents from user-supplied URLs into a local
// scratch directory for processing.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AyUsHh66/Bajaj-Hackrx/internal/validation"
)

// Downloader fetches remote documents with a size cap.
type Downloader struct {
	dir      string
	maxBytes int64
	client   *http.Client
}

// Config configures the downloader.
type Config struct {
	// Dir is the download directory (default: temp_downloads).
	Dir string

	// MaxFileBytes caps the downloaded size (default: 64 MiB).
	MaxFileBytes int64

	// Timeout is the HTTP request timeout (default: 2m).
	Timeout time.Duration
}

// New creates a downloader and ensures the target directory exists.
func New(cfg Config) (*Downloader, error) {
	if cfg.Dir == "" {
		cfg.Dir = "temp_downloads"
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = 64 << 20
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	return &Downloader{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxFileBytes,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Result describes a downloaded document.
type Result struct {
	// Path is the local file path. The caller owns cleanup.
	Path string

	// Filename is the document name derived from the URL.
	Filename string

	// Size is the number of bytes written.
	Size int64
}

// Download validates the URL, fetches the document, and writes it under the
// download directory with a unique name.
func (d *Downloader) Download(ctx context.Context, rawURL string) (*Result, error) {
	if err := validation.ValidateDocumentURL(rawURL); err != nil {
		return nil, fmt.Errorf("validate document URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch document: unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > d.maxBytes {
		return nil, fmt.Errorf("document size %d exceeds limit %d", resp.ContentLength, d.maxBytes)
	}

	filename := filenameFromURL(rawURL)
	localPath := filepath.Join(d.dir, uuid.NewString()+"_"+filename)

	out, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("create local file: %w", err)
	}

	// Read one extra byte past the cap to detect oversized bodies that
	// came without a Content-Length header.
	written, err := io.Copy(out, io.LimitReader(resp.Body, d.maxBytes+1))
	closeErr := out.Close()
	if err != nil {
		os.Remove(localPath)
		return nil, fmt.Errorf("write document: %w", err)
	}
	if closeErr != nil {
		os.Remove(localPath)
		return nil, fmt.Errorf("close local file: %w", closeErr)
	}
	if written > d.maxBytes {
		os.Remove(localPath)
		return nil, fmt.Errorf("document exceeds size limit %d", d.maxBytes)
	}

	return &Result{
		Path:     localPath,
		Filename: filename,
		Size:     written,
	}, nil
}

// filenameFromURL extracts a usable document name from the URL path,
// stripping query strings that signed URLs carry.
func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "document"
	}

	name := path.Base(parsed.Path)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}
