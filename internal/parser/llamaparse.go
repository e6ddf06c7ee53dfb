// Package parser talks to the LlamaParse cloud API: it uploads a PDF, polls
// for the parsed markdown, and downloads any page images the service
// extracted. The rest of the pipeline only sees the Parsed value.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// DefaultBaseURL is the LlamaParse cloud endpoint.
const DefaultBaseURL = "https://api.cloud.llamaindex.ai/api/parsing"

var errJobPending = errors.New("parse job still running")

// Config holds configuration for the LlamaParse client.
type Config struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration // Per-request HTTP timeout
	PollInterval time.Duration // Delay between result polls (default: 5s)
	MaxPolls     int           // Max poll attempts (default: 60)
	HTTPClient   *http.Client  // Optional (tests)
}

// Client is a LlamaParse API client.
type Client struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	maxPolls     int
	logger       *slog.Logger
}

// Parsed is the parse result for one document, consumed by the extraction
// core.
type Parsed struct {
	Filename string
	Markdown string
	Images   []string // Local paths of downloaded page images
}

// New creates a LlamaParse client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxPolls == 0 {
		cfg.MaxPolls = 60
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		client:       httpClient,
		pollInterval: cfg.PollInterval,
		maxPolls:     cfg.MaxPolls,
		logger:       logger,
	}
}

// Parse uploads a PDF, waits for the parse to finish, and downloads any page
// images into imageDir. imageDir may be empty to skip image downloads.
func (c *Client) Parse(ctx context.Context, pdfPath, imageDir string) (*Parsed, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("LlamaParse API key not configured")
	}

	filename := filepath.Base(pdfPath)
	log := c.logger.With("file", filename)

	jobID, err := c.uploadFile(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("uploading to LlamaParse: %w", err)
	}
	log.Info("uploaded to LlamaParse", "job_id", jobID)

	markdown, err := c.pollMarkdown(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("getting LlamaParse result: %w", err)
	}
	log.Info("parse complete", "content_bytes", len(markdown))

	var images []string
	if imageDir != "" {
		images, err = c.downloadImages(ctx, jobID, imageDir)
		if err != nil {
			// Image assets are best-effort enrichment; markdown alone is
			// still a usable parse.
			log.Warn("failed to download page images", "error", err)
			images = nil
		} else if len(images) > 0 {
			log.Info("downloaded page images", "count", len(images))
		}
	}

	return &Parsed{Filename: filename, Markdown: markdown, Images: images}, nil
}

func (c *Client) uploadFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("upload response missing job id")
	}
	return result.ID, nil
}

// pollMarkdown waits for the parse job to finish and returns its markdown.
func (c *Client) pollMarkdown(ctx context.Context, jobID string) (string, error) {
	var markdown string

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET",
				fmt.Sprintf("%s/job/%s/result/markdown", c.baseURL, jobID), nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Authorization", "Bearer "+c.apiKey)

			resp, err := c.client.Do(req)
			if err != nil {
				return err
			}
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return readErr
			}

			switch resp.StatusCode {
			case http.StatusOK:
				var result struct {
					Markdown string `json:"markdown"`
				}
				if err := json.Unmarshal(body, &result); err != nil {
					markdown = string(body) // raw text fallback
					return nil
				}
				markdown = result.Markdown
				return nil
			case http.StatusAccepted:
				return errJobPending
			default:
				return retry.Unrecoverable(
					fmt.Errorf("LlamaParse error %d: %s", resp.StatusCode, string(body)))
			}
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxPolls)),
		retry.Delay(c.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, errJobPending) {
			return "", fmt.Errorf("LlamaParse job timed out")
		}
		return "", err
	}
	return markdown, nil
}

// downloadImages fetches the structured job result, downloads every page
// image into dir, and returns the local paths.
func (c *Client) downloadImages(ctx context.Context, jobID, dir string) ([]string, error) {
	names, err := c.imageNames(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	var paths []string
	for _, name := range names {
		localPath := filepath.Join(dir, sanitizeFilename(name))
		if err := c.downloadImage(ctx, jobID, name, localPath); err != nil {
			c.logger.Warn("failed to download image", "name", name, "error", err)
			continue
		}
		paths = append(paths, localPath)
	}
	return paths, nil
}

func (c *Client) imageNames(ctx context.Context, jobID string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/job/%s/result/json", c.baseURL, jobID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("job result error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Pages []struct {
			Images []struct {
				Name string `json:"name"`
			} `json:"images"`
		} `json:"pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	var names []string
	for _, page := range result.Pages {
		for _, img := range page.Images {
			if img.Name != "" {
				names = append(names, img.Name)
			}
		}
	}
	return names, nil
}

func (c *Client) downloadImage(ctx context.Context, jobID, name, localPath string) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET",
				fmt.Sprintf("%s/job/%s/result/image/%s", c.baseURL, jobID, name), nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Authorization", "Bearer "+c.apiKey)

			resp, err := c.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("image download error %d", resp.StatusCode)
			}

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			return os.WriteFile(localPath, data, 0o644)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
}

// sanitizeFilename keeps downloaded asset names filesystem-safe.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
}
