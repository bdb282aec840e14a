// Package llm abstracts the outbound text-completion service used by the
// note-generation pipeline. The pipeline only depends on the Client
// interface; the concrete HTTPClient speaks an OpenAI-compatible
// chat-completions wire format. Failures surface as *ServiceError so that
// callers can distinguish timeouts, rate limits, and empty responses
// without inspecting strings.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Request describes a single completion call.
type Request struct {
	// System is the instruction/persona text sent as the system message.
	System string
	// Prompt is the user-visible content of the request.
	Prompt string
	// Temperature controls sampling variance, 0.0-2.0.
	Temperature float64
	// MaxTokens bounds the output size. Zero means the client default.
	MaxTokens int
	// ForceJSON requests structured JSON output mode when the upstream
	// service supports it.
	ForceJSON bool
}

// Client is the completion gateway consumed by the pipeline. Implementations
// must be safe for concurrent use; each call is independent.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Error kinds reported by ServiceError.
const (
	ErrKindTimeout     = "timeout"
	ErrKindRateLimited = "rate_limited"
	ErrKindEmpty       = "empty_response"
	ErrKindUpstream    = "upstream"
)

// ServiceError describes a completion gateway failure. It is fatal for the
// request in which it occurs; retry policy belongs to the caller.
type ServiceError struct {
	Kind       string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion gateway %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion gateway %s: %v", e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// HTTPClient calls an OpenAI-compatible chat-completions endpoint.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// NewHTTPClient creates a completion client for the given endpoint. baseURL
// is the API root (e.g. "https://api.openai.com/v1"); the chat-completions
// path is appended internally.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration, maxTokens int, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire types for the chat-completions contract.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the request and returns the raw completion text. The
// response body is never interpreted here beyond extracting the first
// choice; schema validation is the caller's concern.
func (c *HTTPClient) Complete(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = c.maxTokens
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})
	if req.ForceJSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", &ServiceError{Kind: ErrKindUpstream, Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &ServiceError{Kind: ErrKindUpstream, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", &ServiceError{Kind: ErrKindTimeout, Err: err}
		}
		return "", &ServiceError{Kind: ErrKindUpstream, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &ServiceError{Kind: ErrKindUpstream, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &ServiceError{Kind: ErrKindRateLimited, StatusCode: resp.StatusCode, Err: fmt.Errorf("rate limited")}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ServiceError{Kind: ErrKindUpstream, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(raw)))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &ServiceError{Kind: ErrKindUpstream, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.Error != nil {
		return "", &ServiceError{Kind: ErrKindUpstream, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s: %s", parsed.Error.Type, parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", &ServiceError{Kind: ErrKindEmpty, StatusCode: resp.StatusCode, Err: fmt.Errorf("empty completion")}
	}

	return parsed.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
