package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bedrock-chat/internal/config"
	"bedrock-chat/internal/model"
	"bedrock-chat/internal/utils"
	"bedrock-chat/pkg/logger"
)

const maxResponseBytes = 4 << 20

var (
	ErrUnexpectedStatus = errors.New("prompt request failed")
	ErrInvalidResponse  = errors.New("invalid prompt response")
	ErrNotConfigured    = errors.New("answer endpoint not configured")
)

// Client asks the remote service to answer a prompt.
type Client interface {
	GetPromptResponse(ctx context.Context, req *model.PromptRequest) (*model.PromptResponse, error)
}

// New returns the client selected by cfg.Provider.
func New(cfg config.AnswerConfig) (Client, error) {
	switch cfg.Provider {
	case "", "http":
		return NewHTTPClient(cfg)
	case "openai":
		return NewOpenAIClient(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unsupported answer provider: %s", cfg.Provider)
	}
}

// HTTPClient posts prompts as JSON to the deployed prompt endpoint.
type HTTPClient struct {
	url     string
	headers http.Header
	client  *http.Client
}

// NewHTTPClient creates an HTTPClient for the endpoint in cfg.
func NewHTTPClient(cfg config.AnswerConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	path := cfg.Path
	if path == "" {
		path = "/prompt"
	}

	headers := make(http.Header)
	for name, value := range cfg.Headers {
		headers.Set(name, value)
	}
	if cfg.AuthToken != "" {
		headers.Set("Authorization", cfg.AuthToken)
	}

	return &HTTPClient{
		url:     strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		headers: headers,
		client:  utils.NewHTTPClient(cfg.Timeout),
	}, nil
}

// GetPromptResponse posts req to the prompt endpoint and decodes the answer.
func (c *HTTPClient) GetPromptResponse(ctx context.Context, req *model.PromptRequest) (*model.PromptResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompt request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt request: %w", err)
	}
	for name, values := range c.headers {
		httpReq.Header[name] = values
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("prompt request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.WithFields(logger.Fields{
			"status": resp.StatusCode,
			"url":    c.url,
		}).Warn("Prompt endpoint returned an error status")
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}

	var out model.PromptResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &out, nil
}
