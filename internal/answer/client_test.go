package answer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bedrock-chat/internal/config"
	"bedrock-chat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.AnswerConfig)) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.AnswerConfig{BaseURL: server.URL + "/", Timeout: 5 * time.Second}
	for _, m := range mutate {
		m(&cfg)
	}
	client, err := NewHTTPClient(cfg)
	require.NoError(t, err)
	return client
}

func TestGetPromptResponseSuccess(t *testing.T) {
	var got model.PromptRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/prompt", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "web", r.Header.Get("X-Client"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"promptResponse": "Visit Tokyo",
			"promptTitle": "Japan trip",
			"promptS3URI": "https://example.com/v.mp4",
			"wordsToBold": ["Tokyo"],
			"cartItemsList": [{"asin": "B00X", "qty": 2}]
		}`))
	}, func(cfg *config.AnswerConfig) {
		cfg.AuthToken = "Bearer abc"
		cfg.Headers = map[string]string{"x-client": "web"}
	})

	settings := model.Settings{UseRag: true, StrictPrompt: false, ModelName: "Claude"}
	resp, err := client.GetPromptResponse(context.Background(), model.NewPromptRequest("Plan a trip", settings))
	require.NoError(t, err)

	assert.Equal(t, model.PromptRequest{Prompt: "Plan a trip", UseRag: true, ModelName: "Claude"}, got)
	assert.Equal(t, "Visit Tokyo", resp.PromptResponse)
	assert.Equal(t, "Japan trip", resp.PromptTitle)
	assert.Equal(t, []string{"Tokyo"}, resp.WordsToBold)
	assert.Equal(t, []model.CartItem{{SKU: "B00X", Quantity: 2}}, resp.CartItems())
}

func TestGetPromptResponseNonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.GetPromptResponse(context.Background(), &model.PromptRequest{Prompt: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "500")
}

func TestGetPromptResponseInvalidBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.GetPromptResponse(context.Background(), &model.PromptRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGetPromptResponseNullBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(" null\n"))
	})

	resp, err := client.GetPromptResponse(context.Background(), &model.PromptRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Nil(t, resp)
}

func TestGetPromptResponseOversizedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptResponse":"`))
		_, _ = w.Write([]byte(strings.Repeat("a", maxResponseBytes)))
		_, _ = w.Write([]byte(`"}`))
	})

	_, err := client.GetPromptResponse(context.Background(), &model.PromptRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGetPromptResponseCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetPromptResponse(ctx, &model.PromptRequest{Prompt: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(config.AnswerConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewSelectsProvider(t *testing.T) {
	c, err := New(config.AnswerConfig{BaseURL: "http://localhost:1", Path: "ask"})
	require.NoError(t, err)
	require.IsType(t, &HTTPClient{}, c)
	assert.Equal(t, "http://localhost:1/ask", c.(*HTTPClient).url)

	c, err = New(config.AnswerConfig{Provider: "openai", OpenAI: config.OpenAIConfig{APIKey: "k", Model: "m"}})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = New(config.AnswerConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
