package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// ClientTimeout is the total request timeout for one generation.
	ClientTimeout = 60 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20

	// HeaderGenerationID carries the per-call correlation ID.
	HeaderGenerationID = "X-Generation-Id"
)

// NewHTTPClient creates an HTTP client configured for model calls.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: TLSHandshakeTimeout,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// WorkersAIConfig configures a WorkersAI client.
type WorkersAIConfig struct {
	BaseURL   string
	AccountID string
	APIToken  string
	Model     string
	// HTTPClient defaults to NewHTTPClient().
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// WorkersAI calls the Cloudflare Workers AI REST API.
type WorkersAI struct {
	endpoint string
	token    string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

// NewWorkersAI creates a WorkersAI generator.
func NewWorkersAI(cfg WorkersAIConfig) *WorkersAI {
	client := cfg.HTTPClient
	if client == nil {
		client = NewHTTPClient()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WorkersAI{
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/accounts/" + cfg.AccountID + "/ai/run/" + cfg.Model,
		token:    cfg.APIToken,
		model:    cfg.Model,
		client:   client,
		logger:   logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type runRequest struct {
	Messages []chatMessage `json:"messages"`
}

type runResponse struct {
	Result *struct {
		Response *string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Generate runs one chat completion. A response without a text field is an error.
func (c *WorkersAI) Generate(ctx context.Context, system, prompt string) (string, error) {
	generationID := ulid.Make().String()
	start := time.Now()

	body, err := json.Marshal(runRequest{Messages: []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}})
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set(HeaderGenerationID, generationID)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read generation response: %w", err)
	}

	c.logger.Debug("ai generation",
		slog.String("generation_id", generationID),
		slog.String("model", c.model),
		slog.Int("status_code", resp.StatusCode),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("generation failed with status %d", resp.StatusCode)
	}

	var decoded runResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	if !decoded.Success {
		if len(decoded.Errors) > 0 {
			return "", fmt.Errorf("generation failed: %s (code %d)", decoded.Errors[0].Message, decoded.Errors[0].Code)
		}
		return "", fmt.Errorf("generation failed without error detail")
	}
	if decoded.Result == nil || decoded.Result.Response == nil {
		return "", ErrEmptyResponse
	}

	return *decoded.Result.Response, nil
}
