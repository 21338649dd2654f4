package cli

import (
	"context"

	"bedrock-chat/internal/model"
)

// unavailableClient stands in for an answer client that could not be built,
// so commands that never ask anything still work.
type unavailableClient struct {
	err error
}

func (c unavailableClient) GetPromptResponse(context.Context, *model.PromptRequest) (*model.PromptResponse, error) {
	return nil, c.err
}
