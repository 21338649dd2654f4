package model

// PromptRequest is the body sent to the remote prompt endpoint.
type PromptRequest struct {
	Prompt       string `json:"prompt"`
	UseRag       bool   `json:"useRag"`
	StrictPrompt bool   `json:"strictPrompt"`
	ModelName    string `json:"modelName"`
}

// NewPromptRequest builds the answer service request for prompt under settings.
func NewPromptRequest(prompt string, settings Settings) *PromptRequest {
	return &PromptRequest{
		Prompt:       prompt,
		UseRag:       settings.UseRag,
		StrictPrompt: settings.StrictPrompt,
		ModelName:    settings.ModelName,
	}
}

// SubmitPromptRequest is the body of POST /api/chat/prompt.
type SubmitPromptRequest struct {
	Prompt string `json:"prompt"`
}

// UpdateSettingsRequest carries a partial settings update; nil fields are left alone.
type UpdateSettingsRequest struct {
	UseRag       *bool   `json:"useRag"`
	StrictPrompt *bool   `json:"strictPrompt"`
	ModelName    *string `json:"modelName"`
}

// Apply returns settings with the fields present in r replaced.
func (r UpdateSettingsRequest) Apply(settings Settings) Settings {
	if r.UseRag != nil {
		settings.UseRag = *r.UseRag
	}
	if r.StrictPrompt != nil {
		settings.StrictPrompt = *r.StrictPrompt
	}
	if r.ModelName != nil {
		settings.ModelName = *r.ModelName
	}
	return settings
}
