package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sse := NewSSEWriter(rec)

	require.NoError(t, sse.Write("status", "line one\nline two"))
	require.NoError(t, sse.WriteJSON("session_created", map[string]string{"sessionId": "s1"}))
	require.NoError(t, sse.Comment("ping"))
	require.NoError(t, sse.Close())

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		"event: status\ndata: line one\ndata: line two\n\n"+
			"event: session_created\ndata: {\"sessionId\":\"s1\"}\n\n"+
			": ping\n\n"+
			"data: [DONE]\n\n",
		rec.Body.String())
	assert.True(t, rec.Flushed)
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(0)
	assert.Zero(t, client.Timeout)
	assert.NotNil(t, client.Transport)
}
