// Package audit calls the external model service that produces compliance
// verdicts, optionally grounded by live web search. The service is an
// opaque collaborator: this package owns the request contract, response
// validation and citation extraction, nothing more. No retries.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/compliance-audit/backend/internal/models"
)

// Config for the audit service client.
type Config struct {
	APIKey  string        // falls back to env OPENROUTER_API_KEY
	BaseURL string        // default https://openrouter.ai/api/v1
	Model   string        // e.g. "openai/gpt-4o-mini"
	Timeout time.Duration // transport-level; 0 means no timeout
}

// Client talks to the chat-completions endpoint of the audit service.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// NewClient applies defaults and builds a Client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "openai/gpt-4o-mini"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

// Wire types for the chat-completions contract.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type plugin struct {
	ID         string `json:"id"`
	MaxResults int    `json:"max_results,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Plugins        []plugin        `json:"plugins,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type annotation struct {
	Type        string `json:"type"`
	URLCitation *struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"url_citation"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content     string       `json:"content"`
			Annotations []annotation `json:"annotations"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// verdict is the JSON document the model is instructed to return.
type verdict struct {
	Status    string `json:"status"`
	Narrative string `json:"narrative"`
}

// Run performs one audit. Both texts must be non-empty; validation happens
// before any network call. When webSearch is set the service is asked to
// ground the verdict with live web results, which come back as citations.
func (c *Client) Run(ctx context.Context, regulation, scenario string, webSearch bool) (*models.AuditReport, error) {
	if strings.TrimSpace(regulation) == "" {
		return nil, errors.New("regulation text is required")
	}
	if strings.TrimSpace(scenario) == "" {
		return nil, errors.New("scenario text is required")
	}

	start := time.Now()
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(regulation, scenario)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	if webSearch {
		req.Plugins = []plugin{{ID: "web"}}
	}

	raw, err := c.post(ctx, "/chat/completions", req)
	if err != nil {
		c.log.Error("audit.http_error", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode audit response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("audit service: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("audit service returned no choices")
	}

	msg := resp.Choices[0].Message
	content := stripCodeFences(msg.Content)
	if err := validateVerdict([]byte(content)); err != nil {
		c.log.Error("audit.invalid_verdict", "error", err, "content_len", len(content))
		return nil, fmt.Errorf("audit verdict malformed: %w", err)
	}

	var v verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, fmt.Errorf("unmarshal audit verdict: %w", err)
	}

	report := &models.AuditReport{
		Status:    models.ParseAuditStatus(v.Status),
		Narrative: v.Narrative,
		Citations: extractCitations(msg.Annotations),
	}
	c.log.Info("audit.ok",
		"status", report.Status,
		"citations", len(report.Citations),
		"elapsed_ms", time.Since(start).Milliseconds())
	return report, nil
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audit service unreachable: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read audit response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("audit service: %s", apiErrorMessage(res.StatusCode, raw))
	}
	return raw, nil
}

// apiErrorMessage digs a human-readable message out of an error payload,
// falling back to the HTTP status.
func apiErrorMessage(status int, raw []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return http.StatusText(status)
}

// extractCitations collects url_citation annotations in response order.
func extractCitations(annotations []annotation) []models.Citation {
	var cites []models.Citation
	for _, a := range annotations {
		if a.Type == "url_citation" && a.URLCitation != nil {
			cites = append(cites, models.Citation{
				URL:   a.URLCitation.URL,
				Title: a.URLCitation.Title,
			})
		}
	}
	return cites
}
