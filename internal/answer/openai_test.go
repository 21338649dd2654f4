package answer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bedrock-chat/internal/config"
	"bedrock-chat/internal/model"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewOpenAIClient(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Model:   "default-model",
		Models:  map[string]string{"Claude": "claude-compatible"},
	})
	require.NoError(t, err)
	return client
}

func TestOpenAIClientStrictPrompt(t *testing.T) {
	var got openai.ChatCompletionRequest
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "Visit Kyoto"},
			}},
		})
	})

	resp, err := client.GetPromptResponse(context.Background(), &model.PromptRequest{
		Prompt: "Where to?", StrictPrompt: true, ModelName: "Claude",
	})
	require.NoError(t, err)
	assert.Equal(t, "Visit Kyoto", resp.PromptResponse)
	assert.Empty(t, resp.WordsToBold)

	assert.Equal(t, "claude-compatible", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "Where to?", got.Messages[1].Content)
}

func TestOpenAIClientUnknownModelUsesDefault(t *testing.T) {
	var got openai.ChatCompletionRequest
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "ok"}}},
		})
	})

	_, err := client.GetPromptResponse(context.Background(), &model.PromptRequest{Prompt: "hi", ModelName: "Mistral"})
	require.NoError(t, err)
	assert.Equal(t, "default-model", got.Model)
	require.Len(t, got.Messages, 1)
}

func TestOpenAIClientErrors(t *testing.T) {
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})
	_, err := client.GetPromptResponse(context.Background(), &model.PromptRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	empty := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	_, err = empty.GetPromptResponse(context.Background(), &model.PromptRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
