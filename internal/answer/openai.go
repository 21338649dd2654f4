package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bedrock-chat/internal/config"
	"bedrock-chat/internal/model"
	"bedrock-chat/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
)

const strictSystemPrompt = "Answer only the question asked. " +
	"If you do not know the answer, say so instead of guessing. " +
	"Do not suggest follow-up topics."

// OpenAIClient answers prompts with an OpenAI-compatible chat completions
// endpoint. It has no retrieval step, so useRag is ignored.
type OpenAIClient struct {
	client       *openai.Client
	defaultModel string
	models       map[string]string
}

// NewOpenAIClient creates an OpenAIClient from cfg.
func NewOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: openai api key is empty", ErrNotConfigured)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	// config keys arrive lowercased
	models := make(map[string]string, len(cfg.Models))
	for name, id := range cfg.Models {
		models[strings.ToLower(name)] = id
	}

	return &OpenAIClient{
		client:       openai.NewClientWithConfig(clientConfig),
		defaultModel: cfg.Model,
		models:       models,
	}, nil
}

// modelFor maps the model selector sent by the UI to a model id.
func (c *OpenAIClient) modelFor(name string) string {
	if id, ok := c.models[strings.ToLower(name)]; ok && id != "" {
		return id
	}
	return c.defaultModel
}

func (c *OpenAIClient) GetPromptResponse(ctx context.Context, req *model.PromptRequest) (*model.PromptResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.StrictPrompt {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: strictSystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	modelID := c.modelFor(req.ModelName)
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    modelID,
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			logger.WithFields(logger.Fields{
				"status": apiErr.HTTPStatusCode,
				"model":  modelID,
			}).Warn("Chat completion request rejected")
			return nil, fmt.Errorf("%w: status %d: %s", ErrUnexpectedStatus, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrInvalidResponse)
	}

	logger.Debugf("Chat completion from %s: %d characters", modelID, len(resp.Choices[0].Message.Content))

	return &model.PromptResponse{
		PromptResponse: resp.Choices[0].Message.Content,
	}, nil
}
